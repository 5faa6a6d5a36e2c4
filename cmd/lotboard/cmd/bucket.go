package cmd

import (
	"fmt"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/lotboard/store"
)

var bucketCmd = &cobra.Command{
	Use:   "bucket",
	Short: "Manage buckets",
	Long: `List, create, rename and delete the buckets lots are grouped into.

Examples:
  lotboard bucket list
  lotboard bucket create Swing
  lotboard bucket rename 2 "Long term"
  lotboard bucket delete 2`,
}

var bucketListCmd = &cobra.Command{
	Use:   "list",
	Short: "List buckets with their lot counts",
	Args:  cobra.NoArgs,
	RunE:  runBucketList,
}

var bucketCreateCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create a bucket",
	Args:  cobra.ExactArgs(1),
	RunE:  runBucketCreate,
}

var bucketRenameCmd = &cobra.Command{
	Use:   "rename <id> <name>",
	Short: "Rename a bucket",
	Args:  cobra.ExactArgs(2),
	RunE:  runBucketRename,
}

var bucketDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete an empty bucket",
	Args:  cobra.ExactArgs(1),
	RunE:  runBucketDelete,
}

func init() {
	rootCmd.AddCommand(bucketCmd)
	bucketCmd.AddCommand(bucketListCmd)
	bucketCmd.AddCommand(bucketCreateCmd)
	bucketCmd.AddCommand(bucketRenameCmd)
	bucketCmd.AddCommand(bucketDeleteCmd)
}

func openStore() (*store.SQLite, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	st, err := store.NewSQLite(cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	return st, nil
}

func parseBucketID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid bucket id %q", s)
	}
	return id, nil
}

func runBucketList(cmd *cobra.Command, args []string) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	buckets, err := st.ListBuckets(cmd.Context())
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tLOTS")
	for _, b := range buckets {
		fmt.Fprintf(tw, "%d\t%s\t%d\n", b.ID, b.Name, b.LotCount)
	}
	return tw.Flush()
}

func runBucketCreate(cmd *cobra.Command, args []string) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	b, err := st.CreateBucket(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "✓ Created bucket %d: %s\n", b.ID, b.Name)
	return nil
}

func runBucketRename(cmd *cobra.Command, args []string) error {
	id, err := parseBucketID(args[0])
	if err != nil {
		return err
	}
	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	if err := st.RenameBucket(cmd.Context(), id, args[1]); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "✓ Renamed bucket %d to %s\n", id, args[1])
	return nil
}

func runBucketDelete(cmd *cobra.Command, args []string) error {
	id, err := parseBucketID(args[0])
	if err != nil {
		return err
	}
	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	if err := st.DeleteBucket(cmd.Context(), id); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "✓ Deleted bucket %d\n", id)
	return nil
}
