package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/PolarWolf314/notevault/internal/workflows"
)

var (
	generateLength int
	generateCount  int
)

func init() {
	generateCmd.Flags().IntVarP(&generateLength, "length", "l", 0, "password length (default from password_length)")
	generateCmd.Flags().IntVarP(&generateCount, "count", "c", 1, "number of passwords to print")
}

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate random passwords",
	Long: `Prints random passwords drawn uniformly from the printable ASCII characters
'!' through '~', one per line.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := openEnv()
		if err != nil {
			return err
		}
		result, err := workflows.Generate(context.Background(), env, workflows.GenerateOptions{
			Length: generateLength,
			Count:  generateCount,
		})
		if err != nil {
			return failNow(err)
		}
		for _, pw := range result.Passwords {
			fmt.Println(pw)
		}
		return nil
	},
}
