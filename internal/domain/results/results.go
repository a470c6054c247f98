// Package results post-processes evaluation results documents: it recomputes
// the average difficulty of passed tasks and adds display-ready fields.
package results

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// DefaultDifficulty applies to tasks missing from the difficulty map.
const DefaultDifficulty = 0.5

// ErrUnsupported indicates a results document of an unrecognized shape.
var ErrUnsupported = errors.New("unsupported results document")

// Difficulty maps domain -> task id -> difficulty score in [0, 1].
type Difficulty map[string]map[string]float64

// ParseDifficulty decodes a difficulty document. Top-level keys starting with
// "_" carry metadata and are ignored.
func ParseDifficulty(data []byte) (Difficulty, error) {
	var top map[string]json.RawMessage
	if err := json.Unmarshal(data, &top); err != nil {
		return nil, fmt.Errorf("parse difficulty: %w", err)
	}

	d := make(Difficulty, len(top))
	for domain, body := range top {
		if strings.HasPrefix(domain, "_") {
			continue
		}
		var scores map[string]float64
		if err := json.Unmarshal(body, &scores); err != nil {
			return nil, fmt.Errorf("parse difficulty for domain %q: %w", domain, err)
		}
		d[domain] = scores
	}
	return d, nil
}

// AverageDifficulty is the mean difficulty over task results whose reward is
// strictly positive. Unlisted tasks count as DefaultDifficulty. Returns 0 when
// no task passed.
func AverageDifficulty(taskResults []any, difficulty map[string]float64) float64 {
	var sum, count float64
	for _, r := range taskResults {
		m, ok := r.(map[string]any)
		if !ok {
			continue
		}
		reward, _ := numberOf(m["reward"])
		if reward.f <= 0 {
			continue
		}
		d, ok := difficulty[taskID(m["task_id"])]
		if !ok {
			d = DefaultDifficulty
		}
		sum += d
		count++
	}
	if count == 0 {
		return 0
	}
	return sum / count
}

// Enrich enriches a decoded results document: a bare list of entries, an
// object holding a "results" list, or a single entry.
func Enrich(doc any, difficulty Difficulty) (any, error) {
	switch v := doc.(type) {
	case []any:
		return enrichList(v, difficulty)
	case map[string]any:
		if list, ok := v["results"].([]any); ok {
			entries, err := enrichList(list, difficulty)
			if err != nil {
				return nil, err
			}
			out := clone(v)
			out["results"] = entries
			return out, nil
		}
		return EnrichEntry(v, difficulty), nil
	default:
		return nil, fmt.Errorf("%w: top level is %T", ErrUnsupported, doc)
	}
}

func enrichList(list []any, difficulty Difficulty) ([]any, error) {
	out := make([]any, 0, len(list))
	for i, e := range list {
		m, ok := e.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("%w: entry %d is %T", ErrUnsupported, i, e)
		}
		out = append(out, EnrichEntry(m, difficulty))
	}
	return out, nil
}

// EnrichEntry returns a copy of entry with its summary enriched using the
// difficulty scores of the summary's domain.
func EnrichEntry(entry map[string]any, difficulty Difficulty) map[string]any {
	out := clone(entry)

	summary, _ := entry["summary"].(map[string]any)
	if summary == nil {
		summary = map[string]any{}
	}
	domain, _ := summary["domain"].(string)
	tasks, _ := entry["task_results"].([]any)

	out["summary"] = EnrichSummary(summary, tasks, difficulty[domain])
	return out
}

// EnrichSummary returns a copy of summary with avg_difficulty recomputed and a
// "display" block added.
func EnrichSummary(summary map[string]any, taskResults []any, difficulty map[string]float64) map[string]any {
	totalTasks := numberOr(summary, "total_tasks", intNumber(0))
	numTrials := numberOr(summary, "num_trials", intNumber(1))
	totalSims := numberOr(summary, "total_simulations", totalTasks.mul(numTrials))
	successful := numberOr(summary, "successful_simulations", intNumber(0))
	avgReward := numberOr(summary, "avg_reward", intNumber(0))
	passHatK, _ := summary["pass_hat_k"].(map[string]any)

	corrected := AverageDifficulty(taskResults, difficulty)

	var passRate any = json.Number("0")
	if totalSims.f > 0 {
		passRate = floatField(round(successful.f/totalSims.f*100, 1))
	}

	var passAt1, passAt2 any
	if len(passHatK) > 0 {
		passAt1 = floatField(round(numberOr(passHatK, "1", intNumber(0)).f*100, 1))
		passAt2 = floatField(round(numberOr(passHatK, "2", intNumber(0)).f*100, 1))
	} else {
		passAt1 = floatField(round(avgReward.f*100, 1))
		passAt2 = json.Number("0")
	}

	out := clone(summary)
	out["avg_difficulty"] = floatField(round(corrected, 4))
	if orig, ok := summary["avg_difficulty"]; ok && !sameNumber(orig, corrected) {
		out["avg_difficulty_original"] = orig
	}
	out["display"] = map[string]any{
		"tasks_label":        fmt.Sprintf("%s tasks x %s trials", totalTasks, numTrials),
		"simulations_label":  fmt.Sprintf("%s/%s passed", successful, totalSims),
		"pass_rate_pct":      passRate,
		"pass_at_1_pct":      passAt1,
		"pass_at_2_pct":      passAt2,
		"avg_difficulty_pct": floatField(round(corrected*100, 1)),
	}
	return out
}

func sameNumber(v any, f float64) bool {
	n, ok := numberOf(v)
	if !ok {
		return false
	}
	return n.f == f
}

func taskID(v any) string {
	switch id := v.(type) {
	case nil:
		return ""
	case string:
		return id
	case json.Number:
		return id.String()
	default:
		if n, ok := numberOf(v); ok {
			return n.String()
		}
		return fmt.Sprint(v)
	}
}

func clone(m map[string]any) map[string]any {
	out := make(map[string]any, len(m)+2)
	for k, v := range m {
		out[k] = v
	}
	return out
}
