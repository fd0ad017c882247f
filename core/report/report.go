// Package report turns estimation results into rows, formulas and summaries for display.
package report

import (
	"fmt"
	"strconv"
	"strings"

	"vram-calculator/core/models"
)

// Component is one drawable row of the memory breakdown
type Component struct {
	Key     string  `json:"key"`
	Label   string  `json:"label"`
	GB      float64 `json:"gb"`
	Percent float64 `json:"percent"` // share of total VRAM
}

var labels = map[models.Language]map[string]string{
	models.LanguageEnglish: {
		"modelWeights":      "Model Weights",
		"activations":       "Activations",
		"kvCache":           "KV Cache",
		"gradients":         "Gradients",
		"optimizer":         "Optimizer State",
		"frameworkOverhead": "Framework Overhead",
	},
	models.LanguageChinese: {
		"modelWeights":      "模型权重",
		"activations":       "激活值",
		"kvCache":           "KV缓存",
		"gradients":         "梯度",
		"optimizer":         "优化器状态",
		"frameworkOverhead": "框架开销",
	},
}

func label(lang models.Language, key string) string {
	if l, ok := labels[lang][key]; ok {
		return l
	}
	return labels[models.LanguageEnglish][key]
}

// Components lists the rows to draw for res. Gradient and optimizer rows only appear for
// training results; the overhead row only when it is positive.
func Components(res models.EstimationResult, lang models.Language) []Component {
	type entry struct {
		key   string
		value float64
		show  bool
	}

	entries := []entry{
		{"modelWeights", res.ModelWeights, true},
		{"activations", res.Activations, true},
		{"kvCache", res.KVCache, true},
		{"gradients", deref(res.Gradients), res.Gradients != nil},
		{"optimizer", deref(res.Optimizer), res.Optimizer != nil},
		{"frameworkOverhead", res.FrameworkOverhead, res.FrameworkOverhead > 0},
	}

	components := make([]Component, 0, len(entries))
	for _, e := range entries {
		if !e.show {
			continue
		}
		var pct float64
		if res.TotalVRAM > 0 {
			pct = e.value / float64(res.TotalVRAM) * 100
		}
		components = append(components, Component{
			Key:     e.key,
			Label:   label(lang, e.key),
			GB:      e.value,
			Percent: pct,
		})
	}
	return components
}

func deref(f *float64) float64 {
	if f == nil {
		return 0
	}
	return *f
}

// Formula describes how one component is computed
type Formula struct {
	Key     string `json:"key"`
	Label   string `json:"label"`
	Formula string `json:"formula"`
}

// Formulas returns the formula lines for a task, in breakdown order
func Formulas(task models.Task, lang models.Language) []Formula {
	formulas := []Formula{
		{Key: "modelWeights", Formula: "Parameters × Precision_Bytes"},
		{Key: "activations", Formula: "Batch_Size × Sequence_Length × (4 × Sequence_Length + 8 × Hidden_Size) × Num_Layers × Precision_Bytes"},
		{Key: "kvCache", Formula: "2 × Batch_Size × Sequence_Length × Num_Layers × Hidden_Size × Precision_Bytes"},
	}
	total := "ceil((Model + Activations + KV Cache) × 1.2)"

	if task == models.TaskTraining {
		formulas = append(formulas,
			Formula{Key: "gradients", Formula: "Model Weights"},
			Formula{Key: "optimizer", Formula: "2 × Model Weights (Adam)"},
		)
		total = "ceil((Model + Activations + KV Cache + Gradients + Optimizer) × 1.2)"
	}
	formulas = append(formulas, Formula{Key: "totalVRAM", Label: totalLabel(lang), Formula: total})

	for i := range formulas {
		if formulas[i].Label == "" {
			formulas[i].Label = label(lang, formulas[i].Key)
		}
	}
	return formulas
}

func totalLabel(lang models.Language) string {
	if lang == models.LanguageChinese {
		return "总 VRAM 需求"
	}
	return "Total VRAM"
}

// FormatParameters renders a parameter count in its shortest form ("7", "0.5")
func FormatParameters(billions float64) string {
	return strconv.FormatFloat(billions, 'f', -1, 64)
}

// Summary returns the one-line human-readable description of a configuration
func Summary(cfg models.Configuration, lang models.Language) string {
	precision := strings.ToUpper(string(cfg.Precision))

	if lang == models.LanguageChinese {
		task := "推理"
		if cfg.Task == models.TaskTraining {
			task = "训练"
		}
		return fmt.Sprintf("模型: %sB 参数, 序列长度: %d, 批次: %d, 精度: %s, 任务: %s",
			FormatParameters(cfg.Parameters), cfg.SequenceLength, cfg.BatchSize, precision, task)
	}

	return fmt.Sprintf("Model: %sB params, Sequence: %d, Batch: %d, Precision: %s, Task: %s",
		FormatParameters(cfg.Parameters), cfg.SequenceLength, cfg.BatchSize, precision, cfg.Task)
}
