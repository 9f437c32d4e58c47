package cli

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"data_logger/internal/service"

	"github.com/spf13/cobra"
)

func newPortsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ports",
		Short: "List serial ports attached to this host",
		Args:  cobra.NoArgs,
		RunE:  runPorts,
	}
	cmd.Flags().Bool("json", false, "print the ports as JSON")
	return cmd
}

func runPorts(cmd *cobra.Command, _ []string) error {
	cfg, log, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	ports := service.NewPortService(newDevices(cfg).Enumerator, log).ListPorts(cmd.Context())

	out := cmd.OutOrStdout()
	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(ports)
	}

	if len(ports) == 0 {
		_, err := fmt.Fprintln(out, "no serial ports found")
		return err
	}
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "PORT\tUSB\tVID:PID\tPRODUCT")
	for _, p := range ports {
		usb, ids := "-", "-"
		if p.IsUSB {
			usb = "yes"
			ids = p.VID + ":" + p.PID
		}
		product := p.Product
		if product == "" {
			product = "-"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", p.Name, usb, ids, product)
	}
	return tw.Flush()
}
