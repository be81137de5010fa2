package cmd

import (
	"encoding/base64"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/evidencekit/evidence"
)

// decodedRecord is the YAML view of a parsed record
type decodedRecord struct {
	Name     string         `yaml:"name"`
	Type     string         `yaml:"type"`
	TypeID   string         `yaml:"type_id"`
	Size     int            `yaml:"size"`
	Info     map[string]any `yaml:"info"`
	Content  string         `yaml:"content,omitempty"`
	Encoding string         `yaml:"encoding,omitempty"`
}

func newDecodeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "decode NAME...",
		Short: "Decode records from the archive",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := envFrom(cmd)
			if err != nil {
				return err
			}

			keys, err := env.cfg.KeyProvider()
			if err != nil {
				return err
			}
			decoder, err := evidence.NewDecoder(keys, env.registry, env.cfg.ParallelConfig(), env.opts...)
			if err != nil {
				return err
			}

			jobs := make([]evidence.DecodeJob, 0, len(args))
			failed := 0
			for _, name := range args {
				data, err := env.archive.Load(name)
				if err != nil {
					fmt.Fprintf(cmd.ErrOrStderr(), "%s: %v\n", name, err)
					failed++
					continue
				}
				jobs = append(jobs, evidence.DecodeJob{Name: name, Data: data})
			}

			if err := decoder.DecodeAll(cmd.Context(), jobs); err != nil {
				return err
			}

			enc := yaml.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent(2)
			defer enc.Close()

			for _, job := range jobs {
				if job.Err != nil {
					fmt.Fprintf(cmd.ErrOrStderr(), "%s: %v\n", job.Name, job.Err)
					failed++
					continue
				}
				if err := enc.Encode(newDecodedRecord(job.Record)); err != nil {
					return fmt.Errorf("failed to encode %s: %w", job.Name, err)
				}
			}

			if failed > 0 {
				return fmt.Errorf("%d of %d records failed to decode", failed, len(args))
			}
			return nil
		},
	}
}

func newDecodedRecord(r *evidence.Record) decodedRecord {
	out := decodedRecord{
		Name:   r.Name(),
		Type:   r.TypeName(),
		TypeID: fmt.Sprintf("0x%04x", r.TypeID()),
		Size:   r.Size(),
		Info:   make(map[string]any, len(r.Info())),
	}
	for k, v := range r.Info() {
		if t, ok := v.(time.Time); ok {
			v = t.Format(time.RFC3339Nano)
		}
		out.Info[k] = v
	}

	content := r.Content()
	switch {
	case len(content) == 0:
	case utf8.Valid(content):
		out.Content = string(content)
	default:
		out.Content = base64.StdEncoding.EncodeToString(content)
		out.Encoding = "base64"
	}
	return out
}
