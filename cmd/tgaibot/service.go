package main

import (
	"fmt"
	"os"
	"syscall"

	"github.com/kardianos/service"
	"github.com/spf13/cobra"

	"github.com/tgaibot/tgaibot/pkg/app"
)

func serviceCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:       "service [install|uninstall|start|stop|run]",
		Short:     "Run the bot under the system service manager",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"install", "uninstall", "start", "stop", "run"},
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := newService(runParams(cmd))
			if err != nil {
				return err
			}

			action := args[0]
			if action == "run" {
				return svc.Run()
			}
			if err := service.Control(svc, action); err != nil {
				return fmt.Errorf("service %s: %w", action, err)
			}
			fmt.Printf("service %s: done\n", action)
			return nil
		},
	}
	return cmd
}

// newService builds the kardianos service wrapper around app.Run.
func newService(params app.RunParams) (service.Service, error) {
	svcConfig := &service.Config{
		Name:        "tgaibot",
		DisplayName: "tgaibot Telegram AI assistant",
		Description: "Self-hosted Telegram AI assistant backed by OpenRouter.",
		Arguments:   []string{"service", "run"},
	}
	if params.ConfigPath != "" {
		svcConfig.Arguments = append(svcConfig.Arguments, "--config", params.ConfigPath)
	}
	return service.New(&program{params: params}, svcConfig)
}

// program adapts app.Run to the service.Interface lifecycle.
type program struct {
	params app.RunParams
	done   chan struct{}
}

// Start launches the bot in the background; the service manager expects
// Start to return promptly.
func (p *program) Start(s service.Service) error {
	p.done = make(chan struct{})
	go func() {
		defer close(p.done)
		if err := app.Run(p.params); err != nil {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
	}()
	return nil
}

// Stop delivers the same shutdown signal the interactive path uses, then
// waits for the run loop to drain.
func (p *program) Stop(s service.Service) error {
	proc, err := os.FindProcess(os.Getpid())
	if err != nil {
		return err
	}
	if err := proc.Signal(syscall.SIGTERM); err != nil {
		return err
	}
	if p.done != nil {
		<-p.done
	}
	return nil
}
