package intake

import (
	"errors"

	"vram-calculator/core/models"
)

var messages = map[models.Language]map[error]string{
	models.LanguageEnglish: {
		models.ErrInvalidParameterCount: "Parameters must be a positive number",
		models.ErrInvalidSequenceLength: "Sequence length must be a positive integer",
		models.ErrInvalidBatchSize:      "Batch size must be a positive integer",
		models.ErrInvalidPrecision:      "Precision must be one of fp32, fp16, int8, int4",
		models.ErrInvalidTask:           "Task must be inference or training",
		models.ErrCalculationFailure:    "Error during calculation, please check input parameters",
	},
	models.LanguageChinese: {
		models.ErrInvalidParameterCount: "参数数量必须是大于0的数字",
		models.ErrInvalidSequenceLength: "序列长度必须是大于0的整数",
		models.ErrInvalidBatchSize:      "批次大小必须是大于0的整数",
		models.ErrInvalidPrecision:      "数值精度必须是 fp32、fp16、int8 或 int4",
		models.ErrInvalidTask:           "任务类型必须是推理或训练",
		models.ErrCalculationFailure:    "计算过程中发生错误，请检查输入参数",
	},
}

var kinds = []error{
	models.ErrInvalidParameterCount,
	models.ErrInvalidSequenceLength,
	models.ErrInvalidBatchSize,
	models.ErrInvalidPrecision,
	models.ErrInvalidTask,
	models.ErrCalculationFailure,
}

// Message returns the single user-visible message for err.
// Errors outside the intake taxonomy are reported as calculation failures.
func Message(err error, lang models.Language) string {
	table, ok := messages[lang]
	if !ok {
		table = messages[models.LanguageEnglish]
	}

	for _, kind := range kinds {
		if errors.Is(err, kind) {
			return table[kind]
		}
	}
	return table[models.ErrCalculationFailure]
}

// IsValidationError reports whether err was raised by intake validation
func IsValidationError(err error) bool {
	for _, kind := range kinds[:len(kinds)-1] {
		if errors.Is(err, kind) {
			return true
		}
	}
	return false
}
