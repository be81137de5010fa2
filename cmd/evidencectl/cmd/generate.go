package cmd

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/evidencekit/evidence"
)

func newGenerateCmd() *cobra.Command {
	var (
		typeName   string
		deviceID   string
		userID     string
		sourceID   string
		text       string
		chunks     []string
		chunkFiles []string
		fields     []string
	)

	c := &cobra.Command{
		Use:   "generate",
		Short: "Generate a record and store it in the archive",
		Example: `  evidencectl generate --type device --device-id host1 --chunk ping
  evidencectl generate --type call --set callee=alice --set caller=bob --chunk-file audio.raw`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := envFrom(cmd)
			if err != nil {
				return err
			}

			info := evidence.Info{}
			if err := applyFields(info, fields); err != nil {
				return err
			}
			setIfNotEmpty(info, evidence.FieldDeviceID, deviceID)
			setIfNotEmpty(info, evidence.FieldUserID, userID)
			setIfNotEmpty(info, evidence.FieldSourceID, sourceID)
			setIfNotEmpty(info, evidence.FieldText, text)

			content := make([][]byte, 0, len(chunks)+len(chunkFiles))
			for _, ch := range chunks {
				content = append(content, []byte(ch))
			}
			for _, f := range chunkFiles {
				data, err := os.ReadFile(f)
				if err != nil {
					return fmt.Errorf("failed to read chunk file: %w", err)
				}
				content = append(content, data)
			}
			if len(content) > 0 {
				info[evidence.FieldContent] = content
			}

			provider, err := env.cfg.KeyProvider()
			if err != nil {
				return err
			}
			key, err := provider.Key()
			if err != nil {
				return fmt.Errorf("failed to get key: %w", err)
			}
			if err := evidence.ValidateKeyForSuite(key, env.suite); err != nil {
				return err
			}

			rec := evidence.NewRecord(key, env.registry, info, env.opts...)
			if err := rec.Generate(typeName); err != nil {
				return err
			}
			name, err := env.archive.Save(rec)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%d\n", name, rec.TypeName(), rec.Size())
			return nil
		},
	}

	f := c.Flags()
	f.StringVarP(&typeName, "type", "t", "", "Record type name")
	f.StringVar(&deviceID, "device-id", "", "Device identifier")
	f.StringVar(&userID, "user-id", "", "User identifier")
	f.StringVar(&sourceID, "source-id", "", "Source identifier")
	f.StringVar(&text, "text", "", "Text content of an info record")
	f.StringArrayVar(&chunks, "chunk", nil, "Content chunk (repeatable)")
	f.StringArrayVar(&chunkFiles, "chunk-file", nil, "File whose bytes form one content chunk (repeatable)")
	f.StringArrayVar(&fields, "set", nil, "Extra info field as key=value (repeatable)")
	_ = c.MarkFlagRequired("type")

	return c
}

// applyFields parses key=value pairs into info. Unsigned integers and
// booleans are stored typed so call headers can use them.
func applyFields(info evidence.Info, fields []string) error {
	for _, kv := range fields {
		k, v, ok := strings.Cut(kv, "=")
		if !ok || k == "" {
			return fmt.Errorf("invalid field %q, expected key=value", kv)
		}
		if n, err := strconv.ParseUint(v, 10, 32); err == nil {
			info[k] = uint32(n)
			continue
		}
		if b, err := strconv.ParseBool(v); err == nil {
			info[k] = b
			continue
		}
		info[k] = v
	}
	return nil
}

func setIfNotEmpty(info evidence.Info, field, value string) {
	if value != "" {
		info[field] = value
	}
}
