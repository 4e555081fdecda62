package formatter

import (
	"fmt"
	"os"
	"sort"
	"text/tabwriter"

	"github.com/dustin/go-humanize"

	"github.com/dfgitn4j/auractl/internal/models"
)

// PrintInstanceTable prints a one-row summary table for a single
// instance.
func PrintInstanceTable(info *models.InstanceInfo) {
	// kubectl style tabwriter setup
	w := tabwriter.NewWriter(os.Stdout, 0, 8, 2, ' ', 0)

	// Print header
	fmt.Fprintln(w, "NAME\tCONNECTION URL\tSTATUS\tMEMORY\tLAST UPDATED\tCLOUD PROVIDER\tID")

	// Print row
	fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
		orUnknown(info.Name),
		orUnknown(info.ConnectionURL),
		orUnknown(info.Status),
		orUnknown(info.Memory),
		humanize.Time(info.InfoUpdated),
		orUnknown(info.CloudProvider),
		info.ID,
	)

	w.Flush()
}

// PrintInstanceList prints a table of all instances visible to the
// credentials, sorted by name.
func PrintInstanceList(instances []models.InstanceSummary) {
	if len(instances) == 0 {
		fmt.Println("No instances found.")
		return
	}

	sort.Slice(instances, func(i, j int) bool {
		return instances[i].Name < instances[j].Name
	})

	w := tabwriter.NewWriter(os.Stdout, 0, 8, 2, ' ', 0)

	fmt.Fprintln(w, "ID\tNAME\tCLOUD PROVIDER\tTENANT ID")

	for _, instance := range instances {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
			instance.ID,
			orUnknown(instance.Name),
			orUnknown(instance.CloudProvider),
			orUnknown(instance.TenantID),
		)
	}

	w.Flush()
	fmt.Printf("\nShowing %d instances\n", len(instances))
}

// orUnknown returns a placeholder for fields the API left empty.
func orUnknown(s string) string {
	if s == "" {
		return "<unknown>"
	}
	return s
}
