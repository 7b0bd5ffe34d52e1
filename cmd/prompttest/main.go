package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"

	"maintenance-backend/internal/llm"
	"maintenance-backend/internal/llm/gemini"
	"maintenance-backend/internal/llm/openai"
	"maintenance-backend/internal/plans"
	"maintenance-backend/internal/settings"
	"maintenance-backend/internal/shared/config"
)

func main() {
	cfg := config.Load()

	category := flag.String("category", string(plans.CategoryPreventive), "Preventive or Corrective")
	instrument := flag.String("instrument", string(plans.InstrumentPressureTransmitter), "instrument type")
	platform := flag.String("platform", string(plans.PlatformFixed), "platform type")
	tag := flag.String("tag", "PT-1001", "equipment tag")
	symptom := flag.String("symptom", "", "failure symptom (corrective only)")
	outPath := flag.String("out", "", "Path to write raw JSON output (optional)")
	provider := flag.String("provider", cfg.LLMProvider, "LLM provider")
	model := flag.String("model", cfg.LLMModel, "LLM model")
	printPrompt := flag.Bool("print-prompt", false, "print the prompt and exit")
	flag.Parse()

	req, err := plans.Form{
		Category:       *category,
		InstrumentType: *instrument,
		PlatformType:   *platform,
		Tag:            *tag,
		Symptom:        *symptom,
	}.Validate()
	if err != nil {
		exitErr(err.Error())
	}
	req.Settings = settings.Defaults()

	if *printPrompt {
		fmt.Println(llm.BuildPrompt(req))
		return
	}

	completer, err := buildCompleter(cfg, *provider, *model)
	if err != nil {
		exitErr(err.Error())
	}

	raw, err := llm.NewGateway(completer).Generate(context.Background(), req)
	if err != nil {
		exitErr(fmt.Sprintf("llm generate: %v", err))
	}
	plan, err := plans.Decode(raw)
	if err != nil {
		exitErr(fmt.Sprintf("invalid plan: %v", err))
	}
	if len(plan.SafetyAnalysis) < llm.MinSafetyRisks {
		fmt.Fprintf(os.Stderr, "warning: %d risks, prompt asks for at least %d\n", len(plan.SafetyAnalysis), llm.MinSafetyRisks)
	}

	pretty, err := prettyJSON(raw)
	if err != nil {
		exitErr(fmt.Sprintf("format json: %v", err))
	}

	if *outPath != "" {
		if err := os.WriteFile(*outPath, pretty, 0o644); err != nil {
			exitErr(fmt.Sprintf("write output: %v", err))
		}
	}

	if _, err := os.Stdout.Write(pretty); err != nil {
		exitErr(fmt.Sprintf("write stdout: %v", err))
	}
	if len(pretty) == 0 || pretty[len(pretty)-1] != '\n' {
		_, _ = os.Stdout.Write([]byte("\n"))
	}
}

func buildCompleter(cfg config.Config, provider, model string) (llm.Completer, error) {
	switch strings.ToLower(strings.TrimSpace(provider)) {
	case "openai":
		return openai.NewClient(cfg.OpenAIAPIKey, model, cfg.LLMTimeout)
	case "", "gemini":
		return gemini.NewClient(context.Background(), gemini.Options{
			APIKey:  cfg.GeminiAPIKey,
			Model:   model,
			Timeout: cfg.LLMTimeout,
		})
	default:
		return nil, fmt.Errorf("unsupported provider: %s", provider)
	}
}

func prettyJSON(raw []byte) ([]byte, error) {
	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "  "); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func exitErr(msg string) {
	_, _ = fmt.Fprintln(os.Stderr, msg)
	os.Exit(1)
}
