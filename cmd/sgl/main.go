package main

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"signline/internal/audit"
	"signline/internal/config"
	"signline/internal/db"
	"signline/internal/docstore"
	"signline/internal/envelope"
	"signline/internal/listener"
	"signline/internal/migrate"
	"signline/internal/session"
	"signline/internal/users"
)

var rootCmd = &cobra.Command{
	Use:   "sgl",
	Short: "Signline CLI",
	Long: `Signline assembles and sends electronic signature envelopes.
An envelope bundles documents, recipients, and anchored signing tabs into
one signature request; lifecycle events (completed/declined/voided) come
back to a callback listener and land in a local audit log.`,
}

func main() {
	cobra.OnInitialize(initConfig)
	addPersistentFlags()
	registerCommands()
	if err := rootCmd.Execute(); err != nil {
		fmt.Println("error:", err)
		os.Exit(1)
	}
}

func initConfig() {
	viper.SetEnvPrefix("SIGNLINE")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
}

func addPersistentFlags() {
	rootCmd.PersistentFlags().StringP("workspace", "w", ".", "workspace directory")
	rootCmd.PersistentFlags().Bool("json", false, "output JSON")
	rootCmd.PersistentFlags().Bool("jwt", false, "authenticate with the token grant")
	_ = viper.BindPFlag("workspace", rootCmd.PersistentFlags().Lookup("workspace"))
	_ = viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
	_ = viper.BindPFlag("jwt", rootCmd.PersistentFlags().Lookup("jwt"))
}

func registerCommands() {
	rootCmd.AddCommand(configCmd())
	rootCmd.AddCommand(loginCmd())
	rootCmd.AddCommand(envelopeCmd())
	rootCmd.AddCommand(usersCmd())
	rootCmd.AddCommand(docCmd())
	rootCmd.AddCommand(logCmd())
	rootCmd.AddCommand(listenCmd())
}

func configCmd() *cobra.Command {
	cc := &cobra.Command{Use: "config", Short: "Manage provider config"}
	var title string
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write a default signline.yml",
		RunE: func(cmd *cobra.Command, args []string) error {
			path := config.Path(viper.GetString("workspace"))
			if _, err := os.Stat(path); err == nil {
				return fmt.Errorf("%s already exists", path)
			}
			return os.WriteFile(path, []byte(config.GenerateDefault(title)), 0o644)
		},
	}
	initCmd.Flags().StringVar(&title, "title", "Signline", "application title used in the default email subject")
	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Print the resolved config",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(viper.GetString("workspace"))
			if err != nil {
				return err
			}
			cfg.Password = "********"
			return printJSONOrTable(cfg)
		},
	}
	cc.AddCommand(initCmd)
	cc.AddCommand(showCmd)
	return cc
}

func loginCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "login",
		Short: "Authenticate and resolve the account context",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd.Context(), func(ctx context.Context, _ *config.Config, sess *session.Session) error {
				return printJSONOrTable(map[string]string{
					"account_id": sess.AccountID,
					"base_url":   sess.BaseURL,
				})
			})
		},
	}
}

func envelopeCmd() *cobra.Command {
	env := &cobra.Command{Use: "envelope", Short: "Build and send envelopes"}
	env.AddCommand(envelopeSendCmd())
	env.AddCommand(envelopeVoidCmd())
	return env
}

func envelopeSendCmd() *cobra.Command {
	var (
		subject    string
		docs       []string
		signers    []string
		inPerson   []string
		documentID int
		noNotify   bool
	)
	cmd := &cobra.Command{
		Use:   "send",
		Short: "Assemble and send a signature request",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd.Context(), func(ctx context.Context, cfg *config.Config, sess *session.Session) error {
				env := envelope.NewDraft(subject, cfg.DefaultEmailSubject)
				for _, path := range docs {
					data, err := os.ReadFile(path)
					if err != nil {
						return err
					}
					env.AddDocument(envelope.DocumentFromBytes(filepath.Base(path), data))
				}
				input, err := parseRecipients(signers, inPerson)
				if err != nil {
					return err
				}
				env.SetRecipients(input)
				if env.Recipients != nil {
					placed := envelope.PlaceSigningTabs(*env.Recipients, documentID, nil)
					env.Recipients = &placed
				}
				return withAudit(ctx, func(ctx context.Context, aud audit.Writer) error {
					sub := envelope.Submitter{Session: sess, CallbackURL: cfg.CallbackURL, Audit: &aud}
					summary, err := sub.Send(ctx, env, !noNotify)
					if err != nil {
						return err
					}
					return printJSONOrTable(summary)
				})
			})
		},
	}
	cmd.Flags().StringVar(&subject, "subject", "", "email subject (default from config)")
	cmd.Flags().StringArrayVar(&docs, "doc", nil, "document file to attach (repeatable)")
	cmd.Flags().StringArrayVar(&signers, "signer", nil, "signer as Role:Name:email (repeatable)")
	cmd.Flags().StringArrayVar(&inPerson, "in-person", nil, "in-person signer as Role:HostName:hostEmail:SignerName (repeatable)")
	cmd.Flags().IntVar(&documentID, "document-id", 1, "document id the signing tabs anchor to")
	cmd.Flags().BoolVar(&noNotify, "no-notify", false, "skip event notification setup")
	return cmd
}

func envelopeVoidCmd() *cobra.Command {
	var id, reason string
	cmd := &cobra.Command{
		Use:   "void",
		Short: "Void a sent envelope",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd.Context(), func(ctx context.Context, cfg *config.Config, sess *session.Session) error {
				return withAudit(ctx, func(ctx context.Context, aud audit.Writer) error {
					sub := envelope.Submitter{Session: sess, CallbackURL: cfg.CallbackURL, Audit: &aud}
					if err := sub.Void(ctx, id, reason); err != nil {
						return err
					}
					return printJSONOrTable(map[string]string{"envelope_id": id, "status": "voided"})
				})
			})
		},
	}
	cmd.Flags().StringVar(&id, "id", "", "envelope id")
	cmd.Flags().StringVar(&reason, "reason", "voided by sender", "void reason")
	_ = cmd.MarkFlagRequired("id")
	return cmd
}

func usersCmd() *cobra.Command {
	u := &cobra.Command{Use: "users", Short: "Manage account users"}

	var status string
	list := &cobra.Command{
		Use:   "list",
		Short: "List account users",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd.Context(), func(ctx context.Context, cfg *config.Config, sess *session.Session) error {
				svc := users.Service{Session: sess, Config: cfg}
				query := url.Values{}
				if status != "" {
					query.Set("status", status)
				}
				resp, err := svc.List(ctx, query)
				if err != nil {
					return err
				}
				if viper.GetBool("json") {
					return printJSON(resp)
				}
				tw := table.NewWriter()
				tw.SetOutputMirror(os.Stdout)
				tw.AppendHeader(table.Row{"ID", "Name", "Email", "Status"})
				for _, usr := range resp.Users {
					tw.AppendRow(table.Row{usr.UserID, usr.UserName, usr.Email, usr.UserStatus})
				}
				tw.Render()
				return nil
			})
		},
	}
	list.Flags().StringVar(&status, "status", "", "filter by user status")

	var name, email string
	create := &cobra.Command{
		Use:   "create",
		Short: "Create an account user",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd.Context(), func(ctx context.Context, cfg *config.Config, sess *session.Session) error {
				svc := users.Service{Session: sess, Config: cfg}
				id, err := svc.Create(ctx, users.CreateRequest{
					NewUsers: []users.NewUser{{UserName: name, Email: email}},
				})
				if err != nil {
					return err
				}
				return printJSONOrTable(map[string]string{"user_id": id})
			})
		},
	}
	create.Flags().StringVar(&name, "name", "", "user name")
	create.Flags().StringVar(&email, "email", "", "user email")
	_ = create.MarkFlagRequired("name")
	_ = create.MarkFlagRequired("email")

	var id string
	del := &cobra.Command{
		Use:   "delete",
		Short: "Delete an account user",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd.Context(), func(ctx context.Context, cfg *config.Config, sess *session.Session) error {
				svc := users.Service{Session: sess, Config: cfg}
				deleted, err := svc.Delete(ctx, id)
				if err != nil {
					return err
				}
				return printJSONOrTable(map[string]bool{"deleted": deleted})
			})
		},
	}
	del.Flags().StringVar(&id, "id", "", "user id")

	u.AddCommand(list)
	u.AddCommand(create)
	u.AddCommand(del)
	return u
}

func docCmd() *cobra.Command {
	doc := &cobra.Command{Use: "doc", Short: "Store document payloads"}
	var file, name string
	var raw bool
	save := &cobra.Command{
		Use:   "save",
		Short: "Write a document payload to the output directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(viper.GetString("workspace"))
			if err != nil {
				return err
			}
			data, err := os.ReadFile(file)
			if err != nil {
				return err
			}
			payload := strings.TrimSpace(string(data))
			if raw {
				payload = base64.StdEncoding.EncodeToString(data)
			}
			meta, err := docstore.Save(payload, name, cfg.OutputDir)
			if err != nil {
				return err
			}
			return printJSONOrTable(meta)
		},
	}
	save.Flags().StringVar(&file, "file", "", "input file holding the base64 payload")
	save.Flags().StringVar(&name, "name", "", "output file name (default <timestamp>.pdf)")
	save.Flags().BoolVar(&raw, "raw", false, "treat the input file as raw bytes instead of base64")
	_ = save.MarkFlagRequired("file")
	doc.AddCommand(save)
	return doc
}

func logCmd() *cobra.Command {
	lg := &cobra.Command{Use: "log", Short: "Inspect the local envelope event log"}
	var limit int
	var envelopeID string
	tail := &cobra.Command{
		Use:   "tail",
		Short: "Show recent envelope events",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withAudit(cmd.Context(), func(ctx context.Context, aud audit.Writer) error {
				var (
					events []audit.Event
					err    error
				)
				if envelopeID != "" {
					events, err = aud.ForEnvelope(ctx, envelopeID)
				} else {
					events, err = aud.Recent(ctx, limit)
				}
				if err != nil {
					return err
				}
				if viper.GetBool("json") {
					return printJSON(events)
				}
				tw := table.NewWriter()
				tw.SetOutputMirror(os.Stdout)
				tw.AppendHeader(table.Row{"ID", "TS", "Type", "Envelope", "Payload"})
				for _, e := range events {
					tw.AppendRow(table.Row{e.ID, e.TS, e.Type, e.EnvelopeID, e.Payload})
				}
				tw.Render()
				return nil
			})
		},
	}
	tail.Flags().IntVar(&limit, "limit", 50, "max events to show")
	tail.Flags().StringVar(&envelopeID, "envelope", "", "show events for one envelope")
	lg.AddCommand(tail)
	return lg
}

func listenCmd() *cobra.Command {
	var addr, basePath string
	cmd := &cobra.Command{
		Use:   "listen",
		Short: "Run the event notification callback listener",
		RunE: func(cmd *cobra.Command, args []string) error {
			workspace := viper.GetString("workspace")
			conn, err := db.Open(db.Config{Workspace: workspace})
			if err != nil {
				return err
			}
			defer conn.Close()
			if err := migrate.Migrate(conn); err != nil {
				return err
			}
			handler, err := listener.New(listener.Config{
				Audit:    audit.Writer{DB: conn},
				BasePath: basePath,
			})
			if err != nil {
				return err
			}
			fmt.Printf("listening on %s%s\n", addr, basePath)
			return http.ListenAndServe(addr, handler)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", ":8742", "listen address")
	cmd.Flags().StringVar(&basePath, "base-path", "/v0", "base path for the callback API")
	return cmd
}

// --- helpers ---

func withSession(ctx context.Context, fn func(context.Context, *config.Config, *session.Session) error) error {
	cfg, err := config.Load(viper.GetString("workspace"))
	if err != nil {
		return err
	}
	mgr := session.New(cfg)
	var sess *session.Session
	if viper.GetBool("jwt") {
		sess, err = mgr.AuthenticateJWT(ctx)
	} else {
		sess, err = mgr.Authenticate(ctx)
	}
	if err != nil {
		return err
	}
	return fn(ctx, cfg, sess)
}

func withAudit(ctx context.Context, fn func(context.Context, audit.Writer) error) error {
	workspace := viper.GetString("workspace")
	conn, err := db.Open(db.Config{Workspace: workspace})
	if err != nil {
		return err
	}
	defer conn.Close()
	if err := migrate.Migrate(conn); err != nil {
		return err
	}
	return fn(ctx, audit.Writer{DB: conn})
}

func parseRecipients(signers, inPerson []string) (envelope.RecipientInput, error) {
	var input envelope.RecipientInput
	for _, raw := range signers {
		parts := strings.SplitN(raw, ":", 3)
		if len(parts) != 3 {
			return input, fmt.Errorf("signer %q must be Role:Name:email", raw)
		}
		input.Signers = append(input.Signers, envelope.SignerInput{
			Role: parts[0], Name: parts[1], Email: parts[2],
		})
	}
	for _, raw := range inPerson {
		parts := strings.SplitN(raw, ":", 4)
		if len(parts) != 4 {
			return input, fmt.Errorf("in-person signer %q must be Role:HostName:hostEmail:SignerName", raw)
		}
		input.InPersonSigners = append(input.InPersonSigners, envelope.InPersonSignerInput{
			Role: parts[0], HostName: parts[1], HostEmail: parts[2], SignerName: parts[3],
		})
	}
	if len(input.Signers) == 0 && len(input.InPersonSigners) == 0 {
		return input, fmt.Errorf("at least one --signer or --in-person is required")
	}
	return input, nil
}

func printJSONOrTable(v any) error {
	if viper.GetBool("json") {
		return printJSON(v)
	}
	b, _ := json.MarshalIndent(v, "", "  ")
	fmt.Println(string(b))
	return nil
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
