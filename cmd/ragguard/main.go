// ragguard 是 RAG 系统回归测试工具的命令行入口
package main

import (
	"errors"
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		if errors.Is(err, errEvaluationFailed) {
			os.Exit(1)
		}
		fmt.Fprintln(os.Stderr, "错误:", err)
		os.Exit(2)
	}
}

