package raw

import (
	"context"
	"fmt"
	"github.com/ValentinKolb/dGPIO/cmd/util"
	"github.com/ValentinKolb/dGPIO/rpc/common"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"os"
	"text/tabwriter"
)

var (
	// ExecCmd sends a single command given by its mnemonic
	ExecCmd = &cobra.Command{
		Use:   "exec [command] [p1] [p2] [ext words...]",
		Short: "Send a raw command to the daemon",
		Long: `Send a raw command to the daemon by its mnemonic (e.g. I2CO, READ, HWVER).
Parameters default to 0. Further arguments are packed as 32-bit extension words,
use --raw to append extension bytes.

Example: dgpio exec I2CO 1 0x53 0`,
		Args: cobra.MinimumNArgs(1),
		RunE: runExec,
	}

	// CommandsCmd lists all known commands
	CommandsCmd = &cobra.Command{
		Use:   "commands",
		Short: "List all commands known to the client",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "OPCODE\tNAME\tREPLY\tEXTENSION")
			for _, op := range common.Opcodes() {
				reply := "scalar"
				if op.IsBlock() {
					reply = "block"
				}
				fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", uint32(op), op, reply, formatShape(op.Shape()))
			}
			_ = w.Flush()
		},
	}
)

func init() {
	util.SetupClientFlags(ExecCmd)

	key := "raw"
	ExecCmd.Flags().StringSlice(key, nil, util.WrapString("Extension bytes appended after the words (comma separated, e.g. 0x01,0x02)"))
}

func runExec(cmd *cobra.Command, args []string) error {
	op, ok := common.LookupOpcode(args[0])
	if !ok {
		return fmt.Errorf("unknown command %q, see 'dgpio commands'", args[0])
	}

	var params [2]uint32
	for i := 1; i < len(args) && i <= 2; i++ {
		v, err := util.ParseUint32(fmt.Sprintf("p%d", i), args[i])
		if err != nil {
			return err
		}
		params[i-1] = v
	}

	var words []uint32
	for i := 3; i < len(args); i++ {
		v, err := util.ParseUint32(fmt.Sprintf("extension word %d", i-3), args[i])
		if err != nil {
			return err
		}
		words = append(words, v)
	}

	if err := util.BindCommandFlags(cmd); err != nil {
		return err
	}
	raw, err := util.ParseBytes(viper.GetStringSlice("raw"))
	if err != nil {
		return err
	}

	// check the shape before connecting
	command, err := common.BuildCommand(op, params[0], params[1], words, raw)
	if err != nil {
		return err
	}

	d, err := util.Connect(cmd)
	if err != nil {
		return err
	}
	defer d.Close()

	res, err := d.Execute(context.Background(), command)
	if err != nil {
		if derr, ok := common.AsDaemonError(err); ok {
			return fmt.Errorf("%s: %s (%d)", command.Op, derr.Reason(), int32(derr.Code))
		}
		return err
	}

	if res.Kind == common.ResultBlock {
		fmt.Printf("%d %s\n", res.Value, util.FormatBytes(res.Block))
	} else {
		fmt.Println(res.Value)
	}
	return nil
}

func formatShape(s common.Shape) string {
	switch {
	case s.Words == 0 && !s.VarWords && !s.Raw:
		return "-"
	case s.VarWords && s.Raw:
		return "words..., bytes"
	case s.VarWords:
		return fmt.Sprintf("%d+ words", s.Words)
	case s.Raw && s.Words > 0:
		return fmt.Sprintf("%d words, bytes", s.Words)
	case s.Raw:
		return "bytes"
	default:
		return fmt.Sprintf("%d words", s.Words)
	}
}
