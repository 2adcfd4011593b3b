package main

import (
	"os"

	"k8s.io/klog/v2"

	"github.com/ihtc/ihtp-ga/cmd/ihtp-ga/app"
)

func main() {
	cmd := app.NewRootCommand(os.Stdout)
	code := 0
	if err := cmd.Execute(); err != nil {
		code = 1
	}
	klog.Flush()
	os.Exit(code)
}
