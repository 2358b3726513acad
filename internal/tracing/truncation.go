package tracing

import "strings"

const (
	DefaultMaxLength = 200
	// MaxRedisLength 缓存键在 span 中的最大长度
	MaxRedisLength = 100
	// MaxResumeLength 简历正文预览的最大长度
	MaxResumeLength = 150
)

// TruncateString 按字符截断，保留首尾并用省略号连接
func TruncateString(s string, maxLength int) string {
	runes := []rune(s)
	if len(runes) <= maxLength {
		return s
	}
	if maxLength <= 3 {
		return string(runes[:maxLength])
	}

	keep := (maxLength - 3) / 2
	if keep < 1 {
		keep = 1
	}
	return string(runes[:keep]) + "..." + string(runes[len(runes)-keep:])
}

// MaskPII 保留首尾字符，其余替换为 *
// "张三" -> "张*"，"13812345678" -> "13*******78"
func MaskPII(value string) string {
	runes := []rune(value)
	n := len(runes)
	switch {
	case n == 0:
		return ""
	case n == 1:
		return "*"
	case n == 2:
		return string(runes[0]) + "*"
	case n <= 4:
		return string(runes[0]) + strings.Repeat("*", n-2) + string(runes[n-1])
	}
	return string(runes[:2]) + strings.Repeat("*", n-4) + string(runes[n-2:])
}

// SafeFileName 上传文件名里常带有候选人姓名，只保留扩展名和掩码后的主体
func SafeFileName(name string) string {
	dot := strings.LastIndex(name, ".")
	if dot <= 0 {
		return MaskPII(name)
	}
	return MaskPII(name[:dot]) + name[dot:]
}

func SafeRedisKey(key string) string {
	return TruncateString(key, MaxRedisLength)
}

// SafeResumeContent 简历正文只以截断形式出现在 span 属性中
func SafeResumeContent(content string) string {
	return TruncateString(content, MaxResumeLength)
}
