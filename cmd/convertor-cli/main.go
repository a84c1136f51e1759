// Package main provides the convertor-cli companion: it builds the five URL
// variants for a client/provider pair directly against the local config (no
// running server required), and can patch a local Surge rules file's
// rule-provider span in place (spec §1 "companion CLI").
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/BppleMan/convertor/internal/config"
	"github.com/BppleMan/convertor/internal/logging"
	"github.com/BppleMan/convertor/internal/patch"
	"github.com/BppleMan/convertor/sdk/optimizer"
	"github.com/BppleMan/convertor/sdk/parser"
	"github.com/BppleMan/convertor/sdk/profile"
	"github.com/BppleMan/convertor/sdk/providerapi"
	"github.com/BppleMan/convertor/sdk/urlquery"
)

var (
	Version   = "dev"
	Commit    = "none"
	BuildDate = "unknown"
)

// clashTemplate mirrors internal/httpapi/pipeline.go's lazily-parsed
// embedded default Clash scaffold; the CLI is deliberately decoupled from
// that package's unexported pipeline type, so it keeps its own copy of this
// one-line parse rather than importing it.
var clashTemplate = sync.OnceValue(func() *profile.ClashProfile {
	tmpl, err := parser.ParseClash(profile.ClashTemplateYAML())
	if err != nil {
		panic(fmt.Sprintf("convertor-cli: embedded clash template is invalid: %v", err))
	}
	return tmpl
})

func init() {
	logging.SetupBaseLogger()
}

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	var err error
	switch os.Args[1] {
	case "links":
		err = runLinks(os.Args[2:])
	case "patch":
		err = runPatch(os.Args[2:])
	case "version":
		fmt.Printf("convertor-cli Version: %s, Commit: %s, BuiltAt: %s\n", Version, Commit, BuildDate)
		return
	default:
		usage()
		os.Exit(2)
	}
	if err != nil {
		log.Fatalf("%v", err)
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, "usage: %s <links|patch|version> [flags]\n", os.Args[0])
}

// providerFlags are the flags shared by every subcommand that needs to talk
// to a provider: which config, which provider/client pair, and whether to
// override the request's server/interval/strict defaults.
type providerFlags struct {
	fs *flag.FlagSet

	configPath string
	client     string
	provider   string
	server     string
	interval   uint64
	strict     bool
	reset      bool
}

func bindProviderFlags(fs *flag.FlagSet) *providerFlags {
	pf := &providerFlags{fs: fs}
	fs.StringVar(&pf.configPath, "config", "", "Path to convertor.toml (default: <base-dir>/convertor.toml)")
	fs.StringVar(&pf.client, "client", "surge", "Client dialect: surge or clash")
	fs.StringVar(&pf.provider, "provider", "", "Provider tag, as configured under [providers.<tag>]")
	fs.StringVar(&pf.server, "server", "", "Override the configured server URL")
	fs.Uint64Var(&pf.interval, "interval", 0, "Override the client's configured refresh interval (seconds)")
	fs.BoolVar(&pf.strict, "strict", false, "Override the client's configured strict mode")
	fs.BoolVar(&pf.reset, "reset", false, "Reset the upstream subscription URL before building links")
	return pf
}

// explicitlySet reports whether the named flag was passed on the command
// line, distinguishing "strict not given" from "strict=false given" — a
// plain bool field can't tell those apart.
func (pf *providerFlags) explicitlySet(name string) bool {
	var set bool
	pf.fs.Visit(func(f *flag.Flag) {
		if f.Name == name {
			set = true
		}
	})
	return set
}

// resolve loads the config, the named provider's API client, and a fresh
// UrlBuilder for this invocation — the CLI analogue of §4.J steps 1-2,
// driven from local config instead of an inbound request's query.
func (pf *providerFlags) resolve(ctx context.Context) (*config.Config, providerapi.ProviderAPI, *urlquery.UrlBuilder, error) {
	configPath := pf.configPath
	if configPath == "" {
		configPath = filepath.Join(config.BaseDir(), "convertor.toml")
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, nil, err
	}

	pc, ok := cfg.Provider(pf.provider)
	if !ok {
		return nil, nil, nil, fmt.Errorf("unknown provider %q", pf.provider)
	}
	cc, ok := cfg.Client(pf.client)
	if !ok {
		return nil, nil, nil, fmt.Errorf("unknown client %q", pf.client)
	}

	api := providerapi.NewProvider(pc.ToProviderAPIConfig(pf.provider), &http.Client{Timeout: 30 * time.Second}, nil, 0)

	var subURL *url.URL
	if pf.reset {
		subURL, err = api.ResetSubURL(ctx)
	} else {
		subURL, err = api.GetSubURL(ctx)
	}
	if err != nil {
		return nil, nil, nil, fmt.Errorf("fetching subscription url: %w", err)
	}

	server := pf.server
	if server == "" {
		server = cfg.Server
	}
	interval := cc.Interval
	if pf.interval != 0 {
		interval = pf.interval
	}
	strict := cc.Strict
	if pf.explicitlySet("strict") {
		strict = pf.strict
	}

	ub, err := urlquery.NewUrlBuilder(cfg.Secret, pf.client, pf.provider, server, subURL.String(), interval, strict)
	if err != nil {
		return nil, nil, nil, err
	}
	return cfg, api, ub, nil
}

// fetchOptimizedProfile runs §4.J step 3 (fetch + parse + optimize) against
// api/ub, needed to know which policies this subscription produced so their
// rule-provider URLs can be listed or patched.
func fetchOptimizedProfile(ctx context.Context, api providerapi.ProviderAPI, client string, ub *urlquery.UrlBuilder) (profile.Profile, error) {
	raw, err := api.GetRawProfile(ctx, client, "convertor-cli/"+Version)
	if err != nil {
		return nil, err
	}

	var p profile.Profile
	switch client {
	case "surge":
		p, err = parser.ParseSurge(raw)
	case "clash":
		var clash *profile.ClashProfile
		clash, err = parser.ParseClash(raw)
		if err == nil {
			p = profile.MergeClashTemplate(clashTemplate(), clash)
		}
	default:
		return nil, fmt.Errorf("unsupported client %q", client)
	}
	if err != nil {
		return nil, err
	}

	if err := optimizer.Optimize(p, ub); err != nil {
		return nil, err
	}
	return p, nil
}

// runLinks prints the five URL variants for a client/provider, plus one
// rule-provider URL per policy found in the optimized profile — the CLI
// analogue of /api/subscription (handleSubscriptionBundle), grounded in
// original_source's ProviderCliResult display.
func runLinks(args []string) error {
	fs := flag.NewFlagSet("links", flag.ExitOnError)
	pf := bindProviderFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if pf.provider == "" {
		return fmt.Errorf("links: -provider is required")
	}

	ctx := context.Background()
	_, api, ub, err := pf.resolve(ctx)
	if err != nil {
		return err
	}

	p, err := fetchOptimizedProfile(ctx, api, pf.client, ub)
	if err != nil {
		return err
	}

	rawURL, err := ub.RawURL()
	if err != nil {
		return err
	}

	fmt.Println("raw:")
	fmt.Println(rawURL)
	fmt.Println("profile:")
	fmt.Println(ub.ProfileURL())
	fmt.Println("raw-profile:")
	fmt.Println(ub.RawProfileURL())
	fmt.Println("sub-logs:")
	fmt.Println(ub.SubLogsURL())
	fmt.Println("rule-provider:")
	for _, policy := range p.SortedPolicyList() {
		fmt.Println(ub.RuleProviderURL(policy))
	}
	return nil
}

// runPatch fetches the current optimized profile and rewrites the named
// Surge rules file's marker span in place (§1 companion CLI, §6 "Rule-
// provider marker comments"), grounded in
// original_source/crates/confly/src/cli/update.rs's update_surge_rule_providers.
func runPatch(args []string) error {
	fs := flag.NewFlagSet("patch", flag.ExitOnError)
	pf := bindProviderFlags(fs)
	var rulesPath string
	fs.StringVar(&rulesPath, "rules", "", "Path to the local Surge rules file carrying the rule-provider marker span")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if pf.provider == "" {
		return fmt.Errorf("patch: -provider is required")
	}
	if rulesPath == "" {
		return fmt.Errorf("patch: -rules is required")
	}
	if pf.client != "surge" {
		return fmt.Errorf("patch: only the surge client has a rule-provider marker span")
	}

	ctx := context.Background()
	_, api, ub, err := pf.resolve(ctx)
	if err != nil {
		return err
	}

	p, err := fetchOptimizedProfile(ctx, api, pf.client, ub)
	if err != nil {
		return err
	}

	if err := patch.SurgeRuleProviders(rulesPath, ub, p.SortedPolicyList()); err != nil {
		return err
	}
	log.WithField("path", rulesPath).Info("patched rule-provider span")
	return nil
}
