package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/schaermu/dotsync/internal/registry"
	"github.com/schaermu/dotsync/internal/sync"
	"github.com/schaermu/dotsync/internal/ui"
)

var (
	listExpand bool
	listTags   bool
	listAll    bool
)

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List registered paths",
	Args:    cobra.NoArgs,
	RunE:    runList,
}

var registerCmd = &cobra.Command{
	Use:     "register <path>",
	Aliases: []string{"add"},
	Short:   "Start tracking a file",
	Long: `Register copies the file into the content store and commits it. Paths under
your home directory are stored as ~/... so they resolve on every machine.`,
	Args: cobra.ExactArgs(1),
	RunE: runRegister,
}

var unregisterCmd = &cobra.Command{
	Use:     "unregister <path>",
	Aliases: []string{"rm"},
	Short:   "Stop tracking a file and delete its stored copy",
	Args:    cobra.ExactArgs(1),
	RunE:    runUnregister,
}

var tagCmd = &cobra.Command{
	Use:   "tag <path> <key> <value>",
	Short: "Set a tag on a registered path",
	Long: `Tag sets key=value on a registered path. The keys os and hostname restrict the
entry to machines with a matching operating system or hostname; any other key is
descriptive only.`,
	Args: cobra.ExactArgs(3),
	RunE: runTag,
}

var untagCmd = &cobra.Command{
	Use:   "untag <path> <key>",
	Short: "Remove a tag from a registered path",
	Args:  cobra.ExactArgs(2),
	RunE:  runUntag,
}

var saveCmd = &cobra.Command{
	Use:   "save [message]",
	Short: "Copy changed files from this system into the content store",
	Long: `Save shows a diff for every changed file, asks for confirmation, copies the
files into the content store and commits them. The commit message defaults to the
list of changed paths.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSave,
}

var loadCmd = &cobra.Command{
	Use:   "load",
	Short: "Copy changed files from the content store onto this system",
	Args:  cobra.NoArgs,
	RunE:  runLoad,
}

var diffCmd = &cobra.Command{
	Use:   "diff [path]",
	Short: "Show differences between the content store and this system",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runDiff,
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show which registered files differ from the content store",
	Args:  cobra.NoArgs,
	RunE:  runStatus,
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create the dotfiles root and its git repository",
	Args:  cobra.NoArgs,
	RunE:  runInit,
}

var pushCmd = &cobra.Command{
	Use:   "push",
	Short: "Push the content store to its remote",
	Args:  cobra.NoArgs,
	RunE:  runPush,
}

var pullCmd = &cobra.Command{
	Use:   "pull",
	Short: "Pull the content store from its remote",
	Args:  cobra.NoArgs,
	RunE:  runPull,
}

var gitCmd = &cobra.Command{
	Use:   "git [args...]",
	Short: "Run git inside the dotfiles root",
	Long: `Git runs any git command with the dotfiles root as working directory. All
arguments, including flags, are passed to git unchanged and dotsync exits with
git's exit status.`,
	DisableFlagParsing: true,
	RunE:               runGit,
}

func init() {
	addListFlags(listCmd)

	for _, cmd := range []*cobra.Command{saveCmd, loadCmd} {
		cmd.Flags().BoolVarP(&assumeYes, "yes", "y", false, "answer yes to the confirmation prompt")
		cmd.Flags().BoolVar(&dryRun, "dry-run", false, "show what would be done without making changes")
	}
}

func addListFlags(cmd *cobra.Command) {
	cmd.Flags().BoolVarP(&listExpand, "expand", "e", false, "show paths with the home directory expanded")
	cmd.Flags().BoolVarP(&listTags, "tags", "t", false, "show tags")
	cmd.Flags().BoolVarP(&listAll, "all", "a", false, "include entries that do not apply to this system")
}

func runList(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}

	items, err := a.engine.List(listAll)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(items) == 0 {
		_, _ = fmt.Fprintln(out, ui.Muted.Sprint("no entries"))
		return nil
	}

	for _, item := range items {
		printListItem(out, item)
	}
	return nil
}

func printListItem(out io.Writer, item sync.ListItem) {
	line := item.Entry.Path
	if listExpand {
		line = item.SystemPath
	}
	line = ui.Path.Sprint(line)

	if listTags && len(item.Entry.Tags) > 0 {
		line += " " + formatTags(item.Entry)
	}
	if !item.Applies {
		line += " " + ui.Muted.Sprint("not on this system")
	}
	_, _ = fmt.Fprintln(out, line)
}

func formatTags(e registry.Entry) string {
	parts := make([]string, 0, len(e.Tags))
	for _, k := range e.TagKeys() {
		parts = append(parts, k+"="+ui.Highlight.Sprint(e.Tags[k]))
	}
	return strings.Join(parts, " ")
}

func runRegister(cmd *cobra.Command, args []string) error {
	ctx, cancel := setupSignalHandler()
	defer cancel()

	a, err := newApp(cmd)
	if err != nil {
		return err
	}

	entry, err := a.engine.Register(ctx, args[0])
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s registered %s\n", ui.Success.Sprint("✓"), ui.Path.Sprint(entry.Path))
	return nil
}

func runUnregister(cmd *cobra.Command, args []string) error {
	ctx, cancel := setupSignalHandler()
	defer cancel()

	a, err := newApp(cmd)
	if err != nil {
		return err
	}

	removed, err := a.engine.Unregister(ctx, args[0])
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(removed) == 0 {
		_, _ = fmt.Fprintln(out, "Nothing to do!")
		return nil
	}
	_, _ = fmt.Fprintf(out, "%s unregistered %s\n", ui.Success.Sprint("✓"), ui.Path.Sprint(removed[0].Path))
	return nil
}

func runTag(cmd *cobra.Command, args []string) error {
	ctx, cancel := setupSignalHandler()
	defer cancel()

	a, err := newApp(cmd)
	if err != nil {
		return err
	}

	if err := a.engine.Tag(ctx, args[0], args[1], args[2]); err != nil {
		return err
	}
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s tagged %s %s=%s\n",
		ui.Success.Sprint("✓"), ui.Path.Sprint(args[0]), args[1], ui.Highlight.Sprint(args[2]))
	return nil
}

func runUntag(cmd *cobra.Command, args []string) error {
	ctx, cancel := setupSignalHandler()
	defer cancel()

	a, err := newApp(cmd)
	if err != nil {
		return err
	}

	if err := a.engine.Untag(ctx, args[0], args[1]); err != nil {
		return err
	}
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s removed tag %s from %s\n",
		ui.Success.Sprint("✓"), args[1], ui.Path.Sprint(args[0]))
	return nil
}

func runSave(cmd *cobra.Command, args []string) error {
	ctx, cancel := setupSignalHandler()
	defer cancel()

	a, err := newApp(cmd)
	if err != nil {
		return err
	}

	var message string
	if len(args) == 1 {
		message = args[0]
	}

	result, err := a.engine.Save(ctx, message)
	if result != nil {
		printResult(cmd.OutOrStdout(), result, "saved")
	}
	return err
}

func runLoad(cmd *cobra.Command, args []string) error {
	ctx, cancel := setupSignalHandler()
	defer cancel()

	a, err := newApp(cmd)
	if err != nil {
		return err
	}

	result, err := a.engine.Load(ctx)
	if result != nil {
		printResult(cmd.OutOrStdout(), result, "loaded")
	}
	return err
}

func printResult(out io.Writer, result *sync.Result, verb string) {
	switch {
	case result.Plan == nil:
		return
	case result.NothingToDo():
		_, _ = fmt.Fprintln(out, "Nothing to do!")
	case dryRun:
		_, _ = fmt.Fprintf(out, "%s dry run, %d file(s) would be %s\n", ui.Info.Sprint("→"), len(result.Plan.Copies), verb)
	case !result.Confirmed:
		_, _ = fmt.Fprintln(out, "Aborted.")
	default:
		for _, path := range result.Copied {
			_, _ = fmt.Fprintf(out, "%s %s %s\n", ui.Success.Sprint("✓"), verb, ui.Path.Sprint(path))
		}
		if result.Pushed {
			_, _ = fmt.Fprintf(out, "%s pushed\n", ui.Success.Sprint("✓"))
		}
	}
}

func runDiff(cmd *cobra.Command, args []string) error {
	ctx, cancel := setupSignalHandler()
	defer cancel()

	a, err := newApp(cmd)
	if err != nil {
		return err
	}

	var path string
	if len(args) == 1 {
		path = args[0]
	}
	return a.engine.Diff(ctx, path)
}

func runStatus(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}

	items, err := a.engine.Status()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	for _, item := range items {
		state := item.State()
		var label string
		switch state {
		case "in sync":
			label = ui.Success.Sprintf("%-18s", state)
		case "modified":
			label = ui.Warning.Sprintf("%-18s", state)
		default:
			label = ui.Error.Sprintf("%-18s", state)
		}
		_, _ = fmt.Fprintf(out, "%s %s\n", label, ui.Path.Sprint(item.Entry.Path))
	}
	return nil
}

func runInit(cmd *cobra.Command, args []string) error {
	ctx, cancel := setupSignalHandler()
	defer cancel()

	a, err := newApp(cmd)
	if err != nil {
		return err
	}

	created, err := a.engine.Init(ctx)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if !created {
		_, _ = fmt.Fprintf(out, "%s already initialized\n", ui.Path.Sprint(a.cfg.Paths.Root))
		return nil
	}
	_, _ = fmt.Fprintf(out, "%s initialized %s\n", ui.Success.Sprint("✓"), ui.Path.Sprint(a.cfg.Paths.Root))
	return nil
}

func runPush(cmd *cobra.Command, args []string) error {
	ctx, cancel := setupSignalHandler()
	defer cancel()

	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	return a.engine.Push(ctx)
}

func runPull(cmd *cobra.Command, args []string) error {
	ctx, cancel := setupSignalHandler()
	defer cancel()

	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	return a.engine.Pull(ctx)
}

func runGit(cmd *cobra.Command, args []string) error {
	ctx, cancel := setupSignalHandler()
	defer cancel()

	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	return a.git.Run(ctx, args...)
}
