package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/PolarWolf314/notevault/internal/ui"
	"github.com/PolarWolf314/notevault/internal/vault"
	"github.com/PolarWolf314/notevault/internal/workflows"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Print vault changes as they happen",
	Long: `Watches the vault directory and prints a line whenever a vault is created,
modified or removed, by this or any other process. Stop with Ctrl-C.`,
	Args: cobra.NoArgs,
	RunE: runWatch,
}

func runWatch(cmd *cobra.Command, args []string) error {
	env, err := openEnv()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	events, err := workflows.Watch(ctx, env)
	if err != nil {
		return failNow(err)
	}
	fmt.Println(ui.Hint("Watching " + ui.Path.Sprint(env.Store.Dir()) + " (Ctrl-C to stop)"))

	for event := range events {
		Logger.Debugf("Vault event %s %s", event.Type, event.Name)
		fmt.Printf("%s  %s %s\n", time.Now().Format(time.TimeOnly), eventLabel(event.Type), ui.Vault.Sprint(event.Name))
	}
	return nil
}

func eventLabel(t vault.EventType) string {
	switch t {
	case vault.EventCreated:
		return ui.Success.Sprint("created ")
	case vault.EventRemoved:
		return ui.Error.Sprint("removed ")
	default:
		return ui.Info.Sprint("modified")
	}
}
