package commands

import (
	"database/sql"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cartops/proctools/config"
	"github.com/cartops/proctools/errors"
	"github.com/cartops/proctools/track"
)

// MemberFactory builds a pipeline member bound to the run-results store.
type MemberFactory func(store *track.RunStore) (track.Member, error)

// memberRegistry maps member names to their factories. Deployments register
// their members in an init function or from a wrapper main.
var memberRegistry = map[string]MemberFactory{}

// RegisterMember makes a named member available to the run command.
func RegisterMember(name string, factory MemberFactory) {
	memberRegistry[name] = factory
}

// RunCmd represents the run command.
var RunCmd = &cobra.Command{
	Use:   "run [members...]",
	Short: "Execute registered pipeline members in order",
	Long: `Execute registered pipeline members sequentially, recording job run
history in the run-results database. Execution stops at the first failing
member.`,
	RunE: runRun,
}

func runRun(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return errors.Newf("no pipeline member arguments; available members: %s",
			availableMemberNames())
	}
	for _, name := range args {
		if _, ok := memberRegistry[name]; !ok {
			return errors.Newf("%q not a registered member; available members: %s",
				name, availableMemberNames())
		}
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	database, err := openRunResults(cfg)
	if err != nil {
		return err
	}
	defer database.Close()

	members, err := buildMembers(database, args)
	if err != nil {
		return err
	}
	pipeline := track.NewPipeline(cfg.LogsDir(), members...)
	return pipeline.Execute(cmd.Context())
}

func buildMembers(database *sql.DB, names []string) ([]track.Member, error) {
	store := track.NewRunStore(database)
	members := make([]track.Member, 0, len(names))
	for _, name := range names {
		member, err := memberRegistry[name](store)
		if err != nil {
			return nil, errors.Wrapf(err, "build member %q", name)
		}
		members = append(members, member)
	}
	return members, nil
}

func availableMemberNames() string {
	if len(memberRegistry) == 0 {
		return "(none registered)"
	}
	names := make([]string, 0, len(memberRegistry))
	for name := range memberRegistry {
		names = append(names, name)
	}
	sort.Strings(names)
	return strings.Join(names, ", ")
}
