package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/gogpu/modelo/capability"
	"github.com/gogpu/modelo/internal/i18n"
	"github.com/gogpu/modelo/internal/statuscard"
	"github.com/gogpu/modelo/quality"
)

func runProbe(args []string) error {
	fs := flag.NewFlagSet("probe", flag.ExitOnError)
	asJSON := fs.Bool("json", false, "print the descriptor and quality parameters as JSON")
	card := fs.String("card", "", "write a PNG status card to this file")
	lang := fs.String("lang", os.Getenv("LANG"), "message language")
	timeout := fs.Duration("timeout", 30*time.Second, "detection timeout")
	if err := fs.Parse(args); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	desc := capability.Detect(ctx)
	params := quality.Resolve(desc.Tier)
	tag := i18n.Match(*lang)

	if *card != "" {
		f, err := os.Create(*card)
		if err != nil {
			return err
		}
		if err := statuscard.Render(f, desc.Tier.Label(tag), desc.Tier, 100); err != nil {
			_ = f.Close()
			return err
		}
		if err := f.Close(); err != nil {
			return err
		}
	}

	if *asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(struct {
			capability.Descriptor
			Status     string             `json:"status"`
			Parameters quality.Parameters `json:"parameters"`
		}{desc, desc.Status(tag), params})
	}

	fmt.Println(desc.Status(tag))
	fmt.Printf("tier:     %s\n", desc.Tier)
	if desc.Prober != "" {
		fmt.Printf("prober:   %s\n", desc.Prober)
	}
	if b := desc.Backend; b != nil {
		fmt.Printf("backend:  %s %s (%s)\n", b.Vendor, b.Renderer, b.API)
	}
	for _, a := range params.Attributes() {
		fmt.Printf("%-17s %s\n", a.Name+":", a.Value)
	}
	return nil
}
