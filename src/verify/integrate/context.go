package integrate

import (
	"strings"

	"github.com/truthlens/factwave/src/verify/types"
)

// Topic buckets for context enrichment. Ordered so tag output is stable.
var topicBuckets = []struct {
	topic    string
	keywords []string
}{
	{"politics", []string{"election", "president", "government", "policy", "대통령", "정부", "국회", "선거"}},
	{"economy", []string{"economy", "inflation", "market", "budget", "경제", "물가", "금리", "예산"}},
	{"health", []string{"health", "vaccine", "virus", "disease", "건강", "백신", "질병", "의료"}},
	{"science", []string{"science", "research", "study", "climate", "과학", "연구", "기후"}},
	{"society", []string{"crime", "education", "housing", "범죄", "교육", "주택", "사회"}},
}

// AddContext enriches an integrated result with topic tags inferred from the
// claim text. No-op when context is already present. Enrichment is
// best-effort: an empty tag set leaves the result unchanged.
func AddContext(result *types.IntegratedResult, claimText string) {
	if result == nil || result.Context != nil {
		return
	}
	topics := topicTags(claimText)
	if len(topics) == 0 {
		return
	}
	result.Context = &types.ContextInfo{Topics: topics}
}

func topicTags(claimText string) []string {
	lower := strings.ToLower(claimText)
	var topics []string
	for _, bucket := range topicBuckets {
		for _, kw := range bucket.keywords {
			if strings.Contains(lower, kw) {
				topics = append(topics, bucket.topic)
				break
			}
		}
	}
	return topics
}
