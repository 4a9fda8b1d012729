package main

import (
	"fmt"
	"time"

	"github.com/alecthomas/kong"
)

// CLI represents the levelapp command-line interface.
var CLI struct {
	Debug      bool          `help:"Enable debug mode." short:"d" env:"LEVELAPP_DEBUG"`
	Version    VersionCmd    `cmd:"" help:"Print version information."`
	Help       HelpCmd       `cmd:"" hidden:"" default:"1"`
	List       ListCmd       `cmd:"" help:"List registered judge providers."`
	Run        RunCmd        `cmd:"" help:"Run a conversation batch against a target agent."`
	RAG        RAGCmd        `cmd:"" help:"Run the RAG pipeline against a single page and prompt."`
	Completion CompletionCmd `cmd:"" help:"Generate shell completion scripts."`
}

// VersionCmd prints version information.
type VersionCmd struct{}

func (v *VersionCmd) Run() error {
	printVersion()
	return nil
}

// HelpCmd prints top-level help.
type HelpCmd struct{}

func (h *HelpCmd) Run(ctx *kong.Context) error {
	appCtx := *ctx
	if len(appCtx.Path) > 1 {
		appCtx.Path = appCtx.Path[:1]
	}
	return appCtx.PrintUsage(false)
}

// ListCmd lists registered judge providers.
type ListCmd struct{}

func (l *ListCmd) Run() error {
	listCapabilities()
	return nil
}

// RunCmd runs a conversation batch against a target agent.
type RunCmd struct {
	BatchFile string `arg:"" help:"Path to a JSON-encoded ConversationBatch." type:"existingfile"`

	ConfigFile   string        `help:"YAML config file path (providers, database, orchestrator)." type:"existingfile" name:"config-file"`
	AgentURL     string        `help:"Target agent HTTP endpoint." required:"" name:"agent-url"`
	Attempts     int           `help:"Sequential sub-runs per scenario." default:"1"`
	Concurrency  int           `help:"Max scenarios run at once (0 = unbounded within the batch)."`
	Timeout      time.Duration `help:"Overall run timeout." default:"30m"`
	Format       string        `help:"Output format." enum:"table,json,jsonl" default:"table" short:"f"`
	Output       string        `help:"JSONL output file path." short:"o" type:"path"`
	MetricsAddr  string        `help:"If set, serve Prometheus-format run metrics on this address (e.g. :9090) after the run completes, until interrupted." name:"metrics-addr"`
	Verbose      bool          `help:"Verbose output." short:"v"`
}

func (r *RunCmd) Run() error {
	return r.execute()
}

// RAGCmd runs the RAG pipeline against a single page and prompt.
type RAGCmd struct {
	PageURL string `arg:"" help:"Source page URL to scrape and chunk."`
	Prompt  string `arg:"" help:"Question to ask the expected-answer generator and the chatbot."`

	ConfigFile      string `help:"YAML config file path." type:"existingfile" name:"config-file"`
	ChunkSize       int    `help:"Max characters per packed chunk." default:"1500" name:"chunk-size"`
	ChatbotURL      string `help:"Target chatbot base URL." required:"" name:"chatbot-url"`
	ChatbotChatPath string `help:"Chat endpoint path on the chatbot." default:"/chat" name:"chatbot-chat-path"`
	ExpectedModel   string `help:"Provider used to generate the golden answer." name:"expected-model"`
	JudgeProvider   string `help:"Configured judge provider used for comparison." name:"judge-provider"`
}

func (r *RAGCmd) Run() error {
	return r.execute()
}

// CompletionCmd generates shell completion scripts.
type CompletionCmd struct {
	Shell string `arg:"" enum:"bash,zsh,fish" help:"Shell type (bash, zsh, fish)."`
}

func (c *CompletionCmd) Run() error {
	switch c.Shell {
	case "bash":
		fmt.Println("# Bash completion for levelapp")
		fmt.Println("# Add to ~/.bashrc:")
		fmt.Println("# eval \"$(levelapp completion bash)\"")
	case "zsh":
		fmt.Println("# Zsh completion for levelapp")
		fmt.Println("# Add to ~/.zshrc:")
		fmt.Println("# eval \"$(levelapp completion zsh)\"")
	case "fish":
		fmt.Println("# Fish completion for levelapp")
		fmt.Println("# Run: levelapp completion fish | source")
	}
	return nil
}
