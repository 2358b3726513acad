package constants

const (
	// ServiceName 服务名，用于日志、追踪和指标
	ServiceName = "resume-review-go"
	// Version 服务版本
	Version = "1.0.0"

	// UploadFieldName 上传接口的 multipart 字段名
	UploadFieldName = "resume_file"

	// 分析模式，用作指标标签
	ModeSuggestions = "suggestions"
	ModeAnalysis    = "analysis"
)
