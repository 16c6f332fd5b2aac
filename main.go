package main

import (
	"fmt"
	"os"

	easy "git.fiblab.net/utils/logrus-easy-formatter"
	"github.com/fleet-rl/amod/benchmarks"
	"github.com/sirupsen/logrus"
)

// main entry point to all the experiments
func main() {
	logrus.SetFormatter(&easy.Formatter{
		TimestampFormat: "2006-01-02 15:04:05.0000",
		LogFormat:       "[%module%] [%time%] [%lvl%] %msg%\n",
	})
	if level, err := logrus.ParseLevel(os.Getenv("AMOD_LOG_LEVEL")); err == nil {
		logrus.SetLevel(level)
	}

	rootCommand := benchmarks.GetRootCommand()
	if err := rootCommand.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
