package main

import (
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/andrewpaige1/mindmap-api/config"
	"github.com/andrewpaige1/mindmap-api/logger"
)

func newGenerateCmd() *cobra.Command {
	var offline bool
	cmd := &cobra.Command{
		Use:   "generate <file|->",
		Short: "Print the mind map for a text, pdf, docx or image file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if offline {
				cfg.LLMProvider = "none"
			}
			log, err := logger.New(cfg.AppEnv)
			if err != nil {
				return err
			}
			defer log.Sync()

			name := args[0]
			var data []byte
			if name == "-" {
				data, err = io.ReadAll(cmd.InOrStdin())
				name = "stdin.txt"
			} else {
				data, err = os.ReadFile(name)
			}
			if err != nil {
				return fmt.Errorf("read input: %w", err)
			}

			p, err := buildPipeline(cmd.Context(), cfg, log)
			if err != nil {
				return err
			}
			defer p.Close()

			text, err := p.extractor.Extract(cmd.Context(), filepath.Base(name), mime.TypeByExtension(filepath.Ext(name)), data)
			if err != nil {
				return err
			}
			res := p.generator.Generate(cmd.Context(), text)
			log.Info("generated mind map", "source", res.Source, "nodes", len(res.MindMap.Nodes))

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(res.MindMap)
		},
	}
	cmd.Flags().BoolVar(&offline, "offline", false, "skip the language model and use the local generator")
	return cmd
}
