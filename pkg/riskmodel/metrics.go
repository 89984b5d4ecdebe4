package riskmodel

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
)

// ClassMetrics holds precision, recall and F1 for one class or an average.
type ClassMetrics struct {
	Name      string  `json:"name"`
	Precision float64 `json:"precision"`
	Recall    float64 `json:"recall"`
	F1        float64 `json:"f1"`
	Support   int     `json:"support"`
}

// Report is the held-out evaluation of a trained pipeline.
type Report struct {
	Accuracy    float64        `json:"accuracy"`
	Classes     []ClassMetrics `json:"classes"`
	MacroAvg    ClassMetrics   `json:"macro_avg"`
	WeightedAvg ClassMetrics   `json:"weighted_avg"`
	Total       int            `json:"total"`
}

// Evaluate compares predictions against the true labels. A ratio with a zero denominator
// is reported as 0.
func Evaluate(yTrue, yPred []int, classNames []string) (Report, error) {
	if len(yTrue) != len(yPred) {
		return Report{}, fmt.Errorf("got %d true labels but %d predictions", len(yTrue), len(yPred))
	}

	k := len(classNames)
	truePos := make([]int, k)
	predicted := make([]int, k)
	actual := make([]int, k)
	correct := 0

	for i := range yTrue {
		t, p := yTrue[i], yPred[i]
		if t < 0 || t >= k || p < 0 || p >= k {
			return Report{}, fmt.Errorf("label out of range at %d: true=%d predicted=%d", i, t, p)
		}
		actual[t]++
		predicted[p]++
		if t == p {
			truePos[t]++
			correct++
		}
	}

	report := Report{
		Total:   len(yTrue),
		Classes: make([]ClassMetrics, k),
		MacroAvg: ClassMetrics{
			Name:    "macro avg",
			Support: len(yTrue),
		},
		WeightedAvg: ClassMetrics{
			Name:    "weighted avg",
			Support: len(yTrue),
		},
	}
	report.Accuracy = ratio(correct, len(yTrue))

	for c := 0; c < k; c++ {
		precision := ratio(truePos[c], predicted[c])
		recall := ratio(truePos[c], actual[c])
		f1 := 0.0
		if precision+recall > 0 {
			f1 = 2 * precision * recall / (precision + recall)
		}

		report.Classes[c] = ClassMetrics{
			Name:      classNames[c],
			Precision: precision,
			Recall:    recall,
			F1:        f1,
			Support:   actual[c],
		}

		report.MacroAvg.Precision += precision / float64(k)
		report.MacroAvg.Recall += recall / float64(k)
		report.MacroAvg.F1 += f1 / float64(k)

		if len(yTrue) > 0 {
			share := float64(actual[c]) / float64(len(yTrue))
			report.WeightedAvg.Precision += precision * share
			report.WeightedAvg.Recall += recall * share
			report.WeightedAvg.F1 += f1 * share
		}
	}

	return report, nil
}

func ratio(num, den int) float64 {
	if den == 0 {
		return 0
	}
	return float64(num) / float64(den)
}

// String renders the report as an aligned text table.
func (r Report) String() string {
	var sb strings.Builder
	tw := tabwriter.NewWriter(&sb, 0, 0, 2, ' ', tabwriter.AlignRight)

	fmt.Fprintln(tw, "\tprecision\trecall\tf1-score\tsupport\t")
	for _, c := range r.Classes {
		writeRow(tw, c)
	}
	fmt.Fprintln(tw, "\t\t\t\t\t")
	fmt.Fprintf(tw, "accuracy\t\t\t%.2f\t%s\t\n", r.Accuracy, humanize.Comma(int64(r.Total)))
	writeRow(tw, r.MacroAvg)
	writeRow(tw, r.WeightedAvg)
	_ = tw.Flush()

	return sb.String()
}

func writeRow(tw *tabwriter.Writer, c ClassMetrics) {
	fmt.Fprintf(
		tw,
		"%s\t%.2f\t%.2f\t%.2f\t%s\t\n",
		c.Name,
		c.Precision,
		c.Recall,
		c.F1,
		humanize.Comma(int64(c.Support)),
	)
}
