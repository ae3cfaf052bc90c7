package cmd

import (
	"github.com/spf13/cobra"

	"slcand"
)

var opts slcand.Options

var exitCode int

var rootCmd = &cobra.Command{
	Use:   "slcand [options] <tty> [canif-name]",
	Short: "userspace daemon for the serial line CAN interface driver SLCAN",
	Long: `slcand attaches the slcan line discipline to a serial device so the
kernel exposes the connected CAN adapter as a regular CAN netdevice. It
configures the UART, primes the adapter with its control commands, keeps
the attachment alive until stopped and restores the original line
settings on the way out.`,
	Example: `  slcand -o -c -f -s6 ttyUSB0
  slcand -o -c -f -s6 ttyUSB0 can0
  slcand -o -c -f -s6 /dev/ttyUSB0`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		opts.TTY = args[0]
		if len(args) > 1 {
			opts.Name = args[1]
		}
		cfg, err := opts.Resolve()
		if err != nil {
			return err
		}
		// Past argument validation; runtime failures should not reprint usage.
		cmd.SilenceUsage = true
		exitCode = slcand.Run(cfg)
		return nil
	},
}

// Execute runs the CLI and returns the process exit code.
func Execute() int {
	if err := rootCmd.Execute(); err != nil {
		return 1
	}
	return exitCode
}

func init() {
	f := rootCmd.Flags()
	f.BoolVarP(&opts.SendOpen, "open", "o", false, `send open command 'O\r'`)
	f.BoolVarP(&opts.SendClose, "close", "c", false, `send close command 'C\r' on shutdown`)
	f.BoolVarP(&opts.ReadStatus, "read-status", "f", false, `read status flags with 'F\r' to reset error states`)
	f.BoolVarP(&opts.SendListen, "listen", "l", false, `send listen only command 'L\r', overrides -o`)
	f.StringVarP(&opts.Speed, "speed", "s", "", "set CAN speed 0..8")
	f.Uint32VarP(&opts.UARTBaud, "uart-speed", "S", 0, "set UART speed in baud")
	f.StringVarP(&opts.Flow, "flow", "t", "", "set UART flow control type 'hw' or 'sw'")
	f.StringVarP(&opts.BTR, "btr", "b", "", "set bit time register value")
	f.BoolVarP(&opts.Foreground, "foreground", "F", false, "stay in foreground; no daemonize")
}
