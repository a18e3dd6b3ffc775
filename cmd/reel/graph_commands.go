package main

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"reel/internal/ipc"
)

func newGraphCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "graph",
		Short: "Show the current node graph",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.Graph()
				if err != nil {
					return err
				}
				stdout := cmd.OutOrStdout()
				if len(resp.Graph.Nodes) == 0 {
					fmt.Fprintln(stdout, "Graph is empty")
					return nil
				}

				rows := make([][]string, 0, len(resp.Graph.Nodes))
				for _, node := range resp.Graph.Nodes {
					rows = append(rows, []string{
						shortID(node.ID),
						kindDisplayName(node.Kind),
						truncate(node.Title, 32),
						strconv.Itoa(len(node.Items)),
						strconv.Itoa(len(node.Outbound)),
					})
				}
				fmt.Fprintln(stdout, renderTable(
					[]string{"ID", "Kind", "Title", "Items", "Links"},
					rows,
					[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignRight},
				))
				if banner := strings.TrimSpace(resp.Graph.Error); banner != "" {
					colorize := shouldColorize(stdout)
					fmt.Fprintln(stdout, renderStatusLine("Error", statusError, banner, colorize))
				}
				return nil
			})
		},
	}
}

func newNodeCommand(ctx *commandContext) *cobra.Command {
	nodeCmd := &cobra.Command{
		Use:   "node",
		Short: "Node operations",
	}

	var addX, addY float64
	addCmd := &cobra.Command{
		Use:   "add <kind>",
		Short: "Add a node to the canvas",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.AddNode(args[0], addX, addY)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Added %s node %s\n", kindDisplayName(resp.Node.Kind), resp.Node.ID)
				return nil
			})
		},
	}
	addCmd.Flags().Float64Var(&addX, "x", 0, "Canvas x position")
	addCmd.Flags().Float64Var(&addY, "y", 0, "Canvas y position")

	removeCmd := &cobra.Command{
		Use:   "remove <node-id>",
		Short: "Remove a node",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				if _, err := client.RemoveNode(args[0]); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Node removed")
				return nil
			})
		},
	}

	connectCmd := &cobra.Command{
		Use:   "connect <source-id> <target-id>",
		Short: "Connect two nodes",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				if _, err := client.Connect(args[0], args[1]); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Connected")
				return nil
			})
		},
	}

	disconnectCmd := &cobra.Command{
		Use:   "disconnect <source-id> <target-id>",
		Short: "Remove a connection between two nodes",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				if _, err := client.Disconnect(args[0], args[1]); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Disconnected")
				return nil
			})
		},
	}

	nodeCmd.AddCommand(addCmd, removeCmd, connectCmd, disconnectCmd)
	return nodeCmd
}

func newUndoCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "undo",
		Short: "Undo the most recent graph change",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.Undo()
				if err != nil {
					return err
				}
				if resp.Undone {
					fmt.Fprintln(cmd.OutOrStdout(), "Undid last change")
				} else {
					fmt.Fprintln(cmd.OutOrStdout(), "Nothing to undo")
				}
				return nil
			})
		},
	}
}

func newRunCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "run <node-id>",
		Short: "Run a node's generation action",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				if _, err := client.Run(args[0]); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Generation finished")
				return nil
			})
		},
	}
}

func newExportCommand(ctx *commandContext) *cobra.Command {
	var outputPath string
	cmd := &cobra.Command{
		Use:   "export <timeline-node-id>",
		Short: "Export a timeline's clips as a zip archive",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			target := strings.TrimSpace(outputPath)
			if target == "" {
				cfg := ctx.configValue()
				dir := "."
				if cfg != nil && strings.TrimSpace(cfg.Paths.ExportDir) != "" {
					dir = cfg.Paths.ExportDir
				}
				name := fmt.Sprintf("reel-export-%s.zip", time.Now().UTC().Format("20060102T150405Z"))
				target = filepath.Join(dir, name)
			}
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.Export(args[0], target)
				if err != nil {
					return err
				}
				stdout := cmd.OutOrStdout()
				fmt.Fprintf(stdout, "Exported %d clip(s) to %s\n", resp.Included, resp.Path)
				if resp.Skipped > 0 {
					fmt.Fprintf(stdout, "Skipped %d clip(s) without finished video\n", resp.Skipped)
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Destination archive path")
	return cmd
}
