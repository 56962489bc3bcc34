package commands

import (
	"fmt"
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/teranos/wdlint/display"
	"github.com/teranos/wdlint/errors"
	"github.com/teranos/wdlint/wiki"
)

// CacheCmd manages the knowledge-base cache
var CacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect and manage the knowledge-base cache",
	Long: `Inspect and manage the cache of Wikidata items and Wikipedia articles.

Examples:
  wdlint cache stats
  wdlint cache refresh Q42
  wdlint cache refresh "en:Douglas Adams"
  wdlint cache clear`,
}

var cacheStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show cache statistics",
	Args:  cobra.NoArgs,
	RunE:  runCacheStats,
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove every cached record",
	Args:  cobra.NoArgs,
	RunE:  runCacheClear,
}

var cacheRefreshCmd = &cobra.Command{
	Use:   "refresh <QID|lang:Title>...",
	Short: "Fetch items or articles again, replacing the cached copy",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runCacheRefresh,
}

func init() {
	formatFlag(cacheStatsCmd, "pretty")
	CacheCmd.AddCommand(cacheStatsCmd)
	CacheCmd.AddCommand(cacheClearCmd)
	CacheCmd.AddCommand(cacheRefreshCmd)
}

func runCacheStats(cmd *cobra.Command, args []string) error {
	format, err := display.FormatFlag(cmd)
	if err != nil {
		return err
	}
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	rt, err := openRuntime(cfg)
	if err != nil {
		return err
	}
	defer rt.Close()

	stats, err := rt.cache.Stats(cmd.Context())
	if err != nil {
		return err
	}
	if format != display.FormatPretty {
		return display.Output(cmd.OutOrStdout(), format, stats)
	}
	return display.RenderCacheStats(cmd.OutOrStdout(), cfg.Cache.Path, stats)
}

func runCacheClear(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	rt, err := openRuntime(cfg)
	if err != nil {
		return err
	}
	defer rt.Close()

	if err := rt.cache.Clear(cmd.Context()); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), pterm.LightGreen("✓ Cache cleared"))
	return nil
}

func runCacheRefresh(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	rt, err := openRuntime(cfg)
	if err != nil {
		return err
	}
	defer rt.Close()

	ctx := cmd.Context()
	out := cmd.OutOrStdout()
	for _, arg := range args {
		if id := strings.ToUpper(arg); wiki.IsEntityID(id) {
			e, err := rt.cache.Entity(ctx, id, true)
			if err != nil {
				return errors.Wrapf(err, "failed to refresh %s", id)
			}
			fmt.Fprintf(out, "%s %s\n", id, presence(e != nil))
			continue
		}
		link, ok := wiki.ParseLink(arg)
		if !ok {
			return errors.WithHint(errors.NewInvalidRequestError("%q is neither an item id nor a lang:Title link", arg),
				`use Q42 or "en:Douglas Adams"`)
		}
		a, err := rt.cache.Article(ctx, link.Lang, link.Title, true)
		if err != nil {
			return errors.Wrapf(err, "failed to refresh %s", link)
		}
		fmt.Fprintf(out, "%s %s\n", link, presence(a != nil))
	}
	return nil
}

func presence(found bool) string {
	if found {
		return pterm.LightGreen("refreshed")
	}
	return pterm.Yellow("does not exist (cached as missing)")
}
