package constants

// Redis Key 前缀和格式常量
// 使用统一的命名规范: app:{module}:{entity}:{unique_id}
const (
	// AppPrefix 是所有Redis Key的统一应用前缀
	AppPrefix = "app"

	// AnalysisModulePrefix 简历分析模块
	AnalysisModulePrefix = "analysis"

	// EntityExtraction 外部抽取结果实体
	EntityExtraction = "extraction"

	// KeyExtractionCache 抽取结果缓存 (STRING, JSON)
	// 格式: app:analysis:extraction:{md5(text)}
	KeyExtractionCache = AppPrefix + ":" + AnalysisModulePrefix + ":" + EntityExtraction + ":%s"
)
