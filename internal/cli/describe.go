package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/FlorianElke/cqlrs/internal/render"
)

// newDescribeCommand inspects cluster metadata non-interactively by
// rewriting the target into a fixed system_schema query.
func newDescribeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "describe <cluster|keyspaces|keyspace NAME|table NAME|tables KEYSPACE>",
		Short: "Describe cluster metadata",
		Example: `  cqlrs describe keyspaces
  cqlrs describe tables my_keyspace
  cqlrs describe table users -o json`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			stmt, err := describeStatement(args)
			if err != nil {
				return err
			}

			_, st, sess, _, err := connect(cmd)
			if err != nil {
				return err
			}
			defer sess.Close()

			out, err := sess.Execute(cmd.Context(), stmt)
			if err != nil {
				return err
			}
			return render.Render(cmd.OutOrStdout(), out, st.Format)
		},
	}
}

func describeStatement(args []string) (string, error) {
	switch args[0] {
	case "cluster":
		return "SELECT * FROM system.local;", nil
	case "keyspaces":
		return "SELECT keyspace_name FROM system_schema.keyspaces;", nil
	case "keyspace":
		if len(args) < 2 {
			return "", fmt.Errorf("describe keyspace requires a name")
		}
		return fmt.Sprintf("SELECT * FROM system_schema.keyspaces WHERE keyspace_name = '%s';", escape(args[1])), nil
	case "table":
		if len(args) < 2 {
			return "", fmt.Errorf("describe table requires a name")
		}
		return fmt.Sprintf("SELECT * FROM system_schema.columns WHERE table_name = '%s' ALLOW FILTERING;", escape(args[1])), nil
	case "tables":
		if len(args) < 2 {
			return "", fmt.Errorf("describe tables requires a keyspace")
		}
		return fmt.Sprintf("SELECT table_name FROM system_schema.tables WHERE keyspace_name = '%s';", escape(args[1])), nil
	default:
		return "", fmt.Errorf("unknown describe target %q (expected cluster, keyspaces, keyspace, table, or tables)", args[0])
	}
}

func escape(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}
