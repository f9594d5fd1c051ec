package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/eleven-am/trellis/pkg/trellis"
)

var versionShort bool

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Long:  "Display Trellis version and build information",
	Run: func(cmd *cobra.Command, args []string) {
		if versionShort {
			fmt.Println(trellis.VersionInfo())
			return
		}
		fmt.Print(trellis.FullVersionInfo())
	},
}

func init() {
	versionCmd.Flags().BoolVar(&versionShort, "short", false, "Print the one-line version only")
}
