package analysis

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resume-review-go/internal/types"
)

func skillByName(skills []types.Skill, name string) (types.Skill, bool) {
	for _, s := range skills {
		if s.Name == name {
			return s, true
		}
	}
	return types.Skill{}, false
}

func TestExtractSkillsByKeyword_Confidence(t *testing.T) {
	skills := ExtractSkillsByKeyword("JavaScript and js daily. Python. docker Docker DOCKER docker docker")

	js, ok := skillByName(skills, "JavaScript")
	require.True(t, ok)
	assert.InDelta(t, 0.7, js.Confidence, 1e-9, "两次出现: 0.3 + 0.4")

	py, ok := skillByName(skills, "Python")
	require.True(t, ok)
	assert.InDelta(t, 0.5, py.Confidence, 1e-9)

	d, ok := skillByName(skills, "Docker")
	require.True(t, ok)
	assert.InDelta(t, 0.95, d.Confidence, 1e-9, "置信度上限为 0.95")

	_, ok = skillByName(skills, "Java")
	assert.False(t, ok, "JavaScript 不应算作 Java")
}

func TestExtractSkillsByKeyword_TableOrder(t *testing.T) {
	skills := ExtractSkillsByKeyword("Leadership, Kubernetes, SQL and React")
	names := make([]string, 0, len(skills))
	for _, s := range skills {
		names = append(names, s.Name)
	}
	assert.Equal(t, []string{"React", "SQL", "Kubernetes", "Leadership"}, names)
}

func TestExtractSkillsByKeyword_WordBoundaries(t *testing.T) {
	skills := ExtractSkillsByKeyword("Digital marketing results for new clients")
	for _, s := range skills {
		assert.NotEqual(t, "Git", s.Name, "digital 不应匹配 Git")
		assert.NotEqual(t, "TypeScript", s.Name, "results 不应匹配 TypeScript")
		assert.NotEqual(t, "JavaScript", s.Name)
	}

	skills = ExtractSkillsByKeyword("Hosted on GitHub, deployed with k8s on Amazon Web Services")
	for _, name := range []string{"Git", "Kubernetes", "AWS"} {
		_, ok := skillByName(skills, name)
		assert.True(t, ok, "应识别 %s", name)
	}
}

func TestExtractSkillsByKeyword_ConfidenceRange(t *testing.T) {
	inputs := []string{
		"",
		"python",
		strings.Repeat("python sql aws docker git scrum ", 50),
		"Communication leadership analytical analysis",
	}
	for _, in := range inputs {
		for _, s := range ExtractSkillsByKeyword(in) {
			assert.GreaterOrEqual(t, s.Confidence, 0.3)
			assert.LessOrEqual(t, s.Confidence, 0.95)
		}
	}
}

func TestExtractSkillsByKeyword_NoMatchIsEmptyNotNil(t *testing.T) {
	skills := ExtractSkillsByKeyword("nothing relevant here")
	assert.NotNil(t, skills)
	assert.Empty(t, skills)
}
