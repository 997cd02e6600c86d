package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/earthfall/RestClient/internal/curlconv"
	"github.com/earthfall/RestClient/internal/httpclient"
	"github.com/earthfall/RestClient/internal/parser"
	"github.com/earthfall/RestClient/internal/runner"
	"github.com/earthfall/RestClient/internal/vars"
)

const (
	defaultEnvFile        = "http-client.env.json"
	defaultPrivateEnvFile = "http-client.private.env.json"
	defaultDotEnvFile     = ".env"
)

var (
	flagEnv            string
	flagEnvFile        string
	flagPrivateEnvFile string
	flagTimeout        time.Duration
	flagInsecure       bool
	flagProxy          string
	flagNoRedirects    bool
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "restclient",
		Short:         "Replay .http request files against HTTP, WebSocket, GraphQL and RSocket endpoints",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(runCmd(), convertCmd(), toCurlCmd())
	return root
}

func runCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run FILE",
		Short: "Execute the requests of a .http or .rest file in order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFile(cmd, args[0])
		},
	}
	cmd.Flags().StringVar(&flagEnv, "env", vars.DefaultEnvironment, "environment name to resolve variables against")
	cmd.Flags().StringVarP(&flagEnvFile, "env-file", "e", "", "environment file (default: http-client.env.json next to FILE)")
	cmd.Flags().StringVarP(&flagPrivateEnvFile, "private-env-file", "p", "", "private environment file (default: http-client.private.env.json next to FILE)")
	cmd.Flags().DurationVar(&flagTimeout, "timeout", 30*time.Second, "per request timeout")
	cmd.Flags().BoolVar(&flagInsecure, "insecure", false, "skip TLS certificate verification")
	cmd.Flags().StringVar(&flagProxy, "proxy", "", "proxy URL for HTTP requests")
	cmd.Flags().BoolVar(&flagNoRedirects, "no-redirects", false, "do not follow HTTP redirects")
	return cmd
}

func runFile(cmd *cobra.Command, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}

	baseDir := filepath.Dir(path)
	manager := vars.NewManager()

	// The public file loads first so private values override it per key.
	envFile := flagEnvFile
	if envFile == "" {
		envFile = filepath.Join(baseDir, defaultEnvFile)
	}
	if err := manager.LoadEnvFile(envFile); err != nil {
		return err
	}
	privateFile := flagPrivateEnvFile
	if privateFile == "" {
		privateFile = filepath.Join(baseDir, defaultPrivateEnvFile)
	}
	if err := manager.LoadEnvFile(privateFile); err != nil {
		return err
	}
	if err := manager.LoadDotEnv(filepath.Join(baseDir, defaultDotEnvFile)); err != nil {
		return err
	}

	opts := httpclient.Options{
		Timeout:            flagTimeout,
		FollowRedirects:    !flagNoRedirects,
		InsecureSkipVerify: flagInsecure,
		ProxyURL:           flagProxy,
	}
	if ssl := manager.SSLConfig(flagEnv); ssl != nil {
		if ssl.VerifyHostCertificate != nil && !*ssl.VerifyHostCertificate {
			opts.InsecureSkipVerify = true
		}
		if ssl.ClientCertificate != nil {
			opts.ClientCertFile = resolvePath(baseDir, ssl.ClientCertificate.Path)
		}
		if ssl.ClientCertificateKey != nil {
			opts.ClientKeyFile = resolvePath(baseDir, ssl.ClientCertificateKey.Path)
		}
	}

	doc := parser.Parse(path, data)
	return runner.New(cmd.OutOrStdout(), manager, opts, flagEnv).Run(cmd.Context(), doc)
}

func convertCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "convert CURL",
		Short: "Convert a cURL command to request file format",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), curlconv.CurlToHTTP(args[0]))
			return nil
		},
	}
}

func toCurlCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "to-curl FILE",
		Short: "Convert the first request of a .http file to a cURL command",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read %s: %w", args[0], err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), curlconv.HTTPToCurl(string(data)))
			return nil
		},
	}
}

func resolvePath(baseDir, path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(baseDir, path)
}
