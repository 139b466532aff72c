package main

import (
	"log"
	"os"

	"github.com/spf13/cobra"
	"github.com/tliron/commonlog"
	protocol "github.com/tliron/glsp/protocol_3_16"
	"github.com/tliron/glsp/server"

	"llir2itrs/internal/config"
	"llir2itrs/internal/llirio"
	"llir2itrs/internal/lspsvc"
)

const lsName = "llir2kittel"

func newLSPCommand() *cobra.Command {
	var debug bool
	cmd := &cobra.Command{
		Use:   "lsp",
		Short: "Run an editor-facing LSP server that flags unsupported instructions on open and change",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLSP(debug)
		},
	}
	cmd.Flags().BoolVar(&debug, "debug", false, "enable glsp internal debug logging")
	return cmd
}

func runLSP(debug bool) error {
	level := 0
	if debug {
		level = 1
	}
	commonlog.Configure(level, nil)

	var loader llirio.FileLoader
	h := lspsvc.NewHandler(&loader, config.Default())

	handler := protocol.Handler{
		Initialize:            h.Initialize,
		Initialized:           h.Initialized,
		Shutdown:              h.Shutdown,
		TextDocumentDidOpen:   h.TextDocumentDidOpen,
		TextDocumentDidChange: h.TextDocumentDidChange,
		TextDocumentDidClose:  h.TextDocumentDidClose,
	}

	s := server.NewServer(&handler, lsName, debug)
	log.Println("Starting llir2kittel LSP server...")
	if err := s.RunStdio(); err != nil {
		log.Println("Error running llir2kittel LSP server:", err)
		os.Exit(1)
	}
	return nil
}
