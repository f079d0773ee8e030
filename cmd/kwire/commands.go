package main

import (
	"context"
	"fmt"
	"os"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/pior/kwire"
	"github.com/pior/kwire/api"
)

func apiVersionsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "api-versions [broker]",
		Short: "Print the api versions a broker supports",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			addr := a.firstBroker(args)
			return a.run(func(ctx context.Context, client *kwire.Client) error {
				cat, err := client.APIVersions(ctx, addr)
				if err != nil {
					return err
				}

				w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
				fmt.Fprintln(w, "KEY\tNAME\tMIN\tMAX")
				for _, key := range cat.Keys() {
					r, _ := cat.Lookup(key)
					fmt.Fprintf(w, "%d\t%s\t%d\t%d\n", int16(key), key, r.Min, r.Max)
				}
				return w.Flush()
			})
		},
	}
}

func metadataCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "metadata [topic...]",
		Short: "Print brokers, topics and partition leaders",
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(func(ctx context.Context, client *kwire.Client) error {
				meta, err := client.Metadata(ctx, args...)
				if err != nil {
					return err
				}

				if meta.ClusterID != nil {
					fmt.Printf("cluster %s, controller %d\n\n", *meta.ClusterID, meta.ControllerID)
				}

				w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
				fmt.Fprintln(w, "NODE\tHOST\tPORT\tRACK")
				for _, b := range meta.Brokers {
					rack := "-"
					if b.Rack != nil {
						rack = *b.Rack
					}
					fmt.Fprintf(w, "%d\t%s\t%d\t%s\n", b.NodeID, b.Host, b.Port, rack)
				}
				if err := w.Flush(); err != nil {
					return err
				}

				topics := meta.Topics
				sort.Slice(topics, func(i, j int) bool { return topicName(topics[i]) < topicName(topics[j]) })

				fmt.Println()
				w = tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
				fmt.Fprintln(w, "TOPIC\tPARTITION\tLEADER\tREPLICAS\tISR\tERROR")
				for _, t := range topics {
					if t.ErrorCode != api.None {
						fmt.Fprintf(w, "%s\t-\t-\t-\t-\t%s\n", topicName(t), t.ErrorCode)
						continue
					}
					for _, p := range t.Partitions {
						fmt.Fprintf(w, "%s\t%d\t%d\t%v\t%v\t%s\n",
							topicName(t), p.PartitionIndex, p.LeaderID, p.ReplicaNodes, p.IsrNodes, p.ErrorCode)
					}
				}
				return w.Flush()
			})
		},
	}
}

func topicName(t api.MetadataTopic) string {
	if t.Name == nil {
		return t.TopicID.String()
	}
	return *t.Name
}

func findCoordinatorCmd(a *app) *cobra.Command {
	var transaction bool

	cmd := &cobra.Command{
		Use:   "find-coordinator <key>",
		Short: "Print the coordinator of a group or transaction",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			keyType := api.GroupCoordinator
			if transaction {
				keyType = api.TransactionCoordinator
			}
			return a.run(func(ctx context.Context, client *kwire.Client) error {
				addr, err := client.FindCoordinator(ctx, args[0], keyType)
				if err != nil {
					return err
				}
				fmt.Printf("%s coordinator for %q: %s\n", keyType, args[0], addr)
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&transaction, "transaction", false, "look up a transactional id instead of a group")
	return cmd
}

func listGroupsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list-groups [broker]",
		Short: "List the groups coordinated by a broker",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			addr := a.firstBroker(args)
			return a.run(func(ctx context.Context, client *kwire.Client) error {
				groups, err := client.ListGroups(ctx, addr)
				if err != nil {
					return err
				}
				sort.Slice(groups, func(i, j int) bool { return groups[i].GroupID < groups[j].GroupID })

				w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
				fmt.Fprintln(w, "GROUP\tPROTOCOL\tSTATE")
				for _, g := range groups {
					state := g.GroupState
					if state == "" {
						state = "-"
					}
					fmt.Fprintf(w, "%s\t%s\t%s\n", g.GroupID, g.ProtocolType, state)
				}
				return w.Flush()
			})
		},
	}
}
