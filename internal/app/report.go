package app

import (
	"fmt"
	"maps"
	"slices"
	"text/tabwriter"

	"github.com/vk/sigchain/internal/chain"
	"github.com/vk/sigchain/internal/module"
)

// moduleReports sums the counters reported by every replica of each module,
// keyed by module name.
func moduleReports(ch *chain.Chain) map[string]map[string]int64 {
	out := make(map[string]map[string]int64)
	ch.ForEachModule(func(_ int, m *module.Module) {
		r := m.Report()
		if r == nil {
			return
		}
		sum, ok := out[m.Name()]
		if !ok {
			sum = make(map[string]int64, len(r))
			out[m.Name()] = sum
		}
		for k, v := range r {
			sum[k] += v
		}
	})
	return out
}

// report logs module counters and, when enabled, prints task statistics.
func (a *App) report(ch *chain.Chain) {
	reports := moduleReports(ch)
	for _, name := range slices.Sorted(maps.Keys(reports)) {
		r := reports[name]
		attrs := []any{"module", name}
		for _, k := range slices.Sorted(maps.Keys(r)) {
			attrs = append(attrs, k, r[k])
		}
		if bits := r["bits"]; bits > 0 {
			if errs, ok := r["bit_errors"]; ok {
				attrs = append(attrs, "ber", float64(errs)/float64(bits))
			}
		}
		if frames := r["frames"]; frames > 0 {
			if errs, ok := r["frame_errors"]; ok {
				attrs = append(attrs, "fer", float64(errs)/float64(frames))
			}
		}
		a.logger.Info("Module report.", attrs...)
	}

	if a.config.Stats {
		writeStats(a, ch.Stats())
	}
}

func writeStats(a *App, stats []chain.TaskStats) {
	tw := tabwriter.NewWriter(a.outW, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "TASK\tCALLS\tTOTAL\tAVERAGE")
	for _, s := range stats {
		fmt.Fprintf(tw, "%s\t%d\t%s\t%s\n", s.Task, s.Calls, s.Total, s.Average())
	}
	if err := tw.Flush(); err != nil {
		a.logger.Warn("Failed to print task statistics.", "error", err)
	}
}
