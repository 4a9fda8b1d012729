package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/norma-dev/levelapp/pkg/config"
	"github.com/norma-dev/levelapp/pkg/judge"
	"github.com/norma-dev/levelapp/pkg/model"
)

const version = "0.1.0"

// defaultContext builds a signal-aware context for commands that don't
// take an explicit --timeout flag.
func defaultContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

// toEvaluationConfig adapts a configured provider's connection settings to
// the shape judge.Service.SetConfig expects.
func toEvaluationConfig(p config.ProviderConfig) model.EvaluationConfig {
	return model.EvaluationConfig{
		APIURL:    p.APIURL,
		APIKey:    p.APIKey,
		ModelID:   p.ModelID,
		LLMConfig: p.LLMConfig,
	}
}

func listCapabilities() {
	fmt.Println("Registered Capabilities")
	fmt.Println("=======================")
	fmt.Println()

	fmt.Printf("Judge providers (%d):\n", judge.Registry.Count())
	for _, name := range judge.Registry.List() {
		fmt.Printf("  - %s\n", name)
	}
}

func printVersion() {
	fmt.Printf("levelapp %s\n", version)
}
