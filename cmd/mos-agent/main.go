// Command mos-agent serves the My Oracle Support retrieval agent: a
// browser-backed search API and a tool-calling chat endpoint over it.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dogy-web/oracle-agent/pkg/agent"
	"github.com/dogy-web/oracle-agent/pkg/browser"
	"github.com/dogy-web/oracle-agent/pkg/config"
	"github.com/dogy-web/oracle-agent/pkg/llm"
	"github.com/dogy-web/oracle-agent/pkg/llm/openai"
	"github.com/dogy-web/oracle-agent/pkg/logging"
	"github.com/dogy-web/oracle-agent/pkg/mos"
	"github.com/dogy-web/oracle-agent/pkg/server"
)

func main() {
	configPath := flag.String("config", "", "path to config file (default ~/.mos-agent/config.yaml)")
	addr := flag.String("addr", "", "listen address (overrides config)")
	flag.Parse()

	if err := run(*configPath, *addr); err != nil {
		fmt.Fprintf(os.Stderr, "mos-agent: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath, addrOverride string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if addrOverride != "" {
		cfg.ListenAddr = addrOverride
	}

	log, logErr := logging.NewLogger("main")
	if logErr != nil {
		fmt.Fprintf(os.Stderr, "mos-agent: file logging unavailable: %v\n", logErr)
	}
	defer log.Close()

	engine := browser.NewPlaywrightEngine()
	sessions := browser.NewManager(engine, cfg.ProfileDir, cfg.PageTimeout, log)
	defer func() {
		if err := sessions.Shutdown(); err != nil {
			log.Warnf("browser shutdown: %v", err)
		}
	}()

	cache := mos.NewResultCache()
	creds := browser.Credentials{User: cfg.LoginUser, Password: cfg.LoginPassword}
	pipeline := mos.NewPipeline(sessions, creds, cfg.Headless, cfg.PageTimeout, cache, log)

	chatter, err := buildChatter(cfg, pipeline, cache, log)
	if err != nil {
		return err
	}

	srv := server.New(pipeline, chatter, log)
	httpServer := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	shutdownCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.Infof("listening on %s (headless=%v)", cfg.ListenAddr, cfg.Headless)
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	case <-shutdownCtx.Done():
		log.Infof("shutting down")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(ctx); err != nil {
			log.Warnf("http shutdown: %v", err)
		}
	}
	return nil
}

// buildChatter wires the dispatch loop when an API key is configured; without
// one the chat endpoint is disabled and the search endpoints still work.
func buildChatter(cfg *config.Config, pipeline *mos.Pipeline, cache *mos.ResultCache, log *logging.Logger) (server.Chatter, error) {
	if cfg.OpenAIAPIKey == "" {
		log.Warnf("no OpenAI API key configured; /chat is disabled")
		return nil, nil
	}

	opts := []openai.ProviderOption{openai.WithModel(cfg.OpenAIModel)}
	if cfg.OpenAIBaseURL != "" {
		opts = append(opts, openai.WithBaseURL(cfg.OpenAIBaseURL))
	}
	provider, err := openai.NewProvider(cfg.OpenAIAPIKey, opts...)
	if err != nil {
		return nil, err
	}

	agentOpts := []agent.Option{
		agent.WithMaxRounds(cfg.MaxToolRounds),
		agent.WithResultCache(cache),
	}
	if tokenizer, err := llm.NewTokenizer(cfg.OpenAIModel); err == nil {
		agentOpts = append(agentOpts, agent.WithTokenizer(tokenizer))
	} else {
		log.Warnf("tokenizer unavailable: %v", err)
	}

	return agent.New(provider, pipeline, log, agentOpts...), nil
}
