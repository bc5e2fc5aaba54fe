package main

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"

	"devkit/app/usecase"
	"devkit/internal/infrastructure/mcpserver"
)

func newMCPCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Serve the toolkit as MCP tools over stdio",
		RunE: func(cmd *cobra.Command, args []string) error {
			// stdout carries the protocol
			cfg, logger, err := loadConfig(os.Stderr)
			if err != nil {
				return err
			}
			if err := cfg.RequireLLM(); err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			tools, err := buildToolService(ctx, cfg, logger)
			if err != nil {
				return err
			}
			server := mcpserver.NewServer(tools, version)
			logger.Info("starting mcp server on stdio")
			if err := server.Run(ctx, mcp.NewStdioTransport()); err != nil && ctx.Err() == nil {
				return fmt.Errorf("mcp server: %w", err)
			}
			return nil
		},
	}
}

func newBase64Cmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "base64",
		Short: "Encode or decode Base64 locally",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "encode [text]",
			Short: "Encode text (or stdin) to Base64",
			RunE: func(cmd *cobra.Command, args []string) error {
				text, err := inputText(cmd, args)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), usecase.EncodeBase64(text))
				return nil
			},
		},
		&cobra.Command{
			Use:   "decode [base64]",
			Short: "Decode Base64 from the argument (or stdin)",
			RunE: func(cmd *cobra.Command, args []string) error {
				text, err := inputText(cmd, args)
				if err != nil {
					return err
				}
				out, err := usecase.DecodeBase64(text)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), out)
				return nil
			},
		},
	)
	return cmd
}

func inputText(cmd *cobra.Command, args []string) (string, error) {
	if len(args) > 0 {
		return strings.Join(args, " "), nil
	}
	data, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return "", fmt.Errorf("read stdin: %w", err)
	}
	return strings.TrimRight(string(data), "\r\n"), nil
}
