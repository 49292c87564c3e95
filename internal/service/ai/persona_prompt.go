package ai

import (
	"fmt"
	"strings"
	"time"
)

// jst is the zone the persona reports as its local time.
var jst = time.FixedZone("JST", 9*60*60)

var koreanWeekdays = [...]string{"일요일", "월요일", "화요일", "수요일", "목요일", "금요일", "토요일"}

// PromptTemplate holds the sections of the persona system prompt.
type PromptTemplate struct {
	PersonalityRules string
	BaseRules        string
	UserRules        string
	Examples         []string
}

// PromptBuilder renders the system prompt for a daily-conversation persona.
type PromptBuilder struct {
	template PromptTemplate
}

// NewPromptBuilder creates a builder with the default daily-chat template.
func NewPromptBuilder() *PromptBuilder {
	return &PromptBuilder{template: defaultTemplate()}
}

// BuildSystemPrompt fills the template for the given user, persona and traits.
func (pb *PromptBuilder) BuildSystemPrompt(userName, modelName, characters string, now time.Time) string {
	replacer := strings.NewReplacer(
		"{user}", userName,
		"{model}", modelName,
		"{characters}", characters,
	)

	examples := make([]string, 0, len(pb.template.Examples))
	for i, example := range pb.template.Examples {
		examples = append(examples, fmt.Sprintf("%d. %s", i+1, replacer.Replace(example)))
	}

	return fmt.Sprintf(`# 시스템 지침

## 성격 규칙
%s

## 기본 규칙
%s

## 사용자의 규칙
%s

## 대화 예시

%s

## 시간
%s`,
		replacer.Replace(pb.template.PersonalityRules),
		replacer.Replace(pb.template.BaseRules),
		replacer.Replace(pb.template.UserRules),
		strings.Join(examples, "\n\n"),
		formatPromptTime(now),
	)
}

func formatPromptTime(now time.Time) string {
	local := now.In(jst)
	return fmt.Sprintf("%s %s %s(JST)", local.Format("2006-01-02"), koreanWeekdays[local.Weekday()], local.Format("15:04"))
}

func defaultTemplate() PromptTemplate {
	return PromptTemplate{
		PersonalityRules: "{characters}",
		BaseRules: "당신의 이름은 {model}이고, 사용자의 이름은 {user}입니다. 당신은 {characters}한 성격을 갖고있습니다. " +
			"당신의 역할은 친근한 대화상대로 가벼운 일상 대화를 나누는 것입니다. " +
			"자연스럽게 사용자의 하루, 주말 계획 또는 좋아하는 활동에 대해 물어보며 대화를 이끌어야 합니다. " +
			"사용자가 친근감을 느낄수있도록 대화를 하면서 상대방의 말투를 닮아가야합니다. " +
			"사용자가 감정이나 생각을 표현할 때 경청하고 긍정적인 반응을 보여주세요. " +
			"만약 심각한 정신적 문제가 감지되면 부드럽게 문제의 가능성을 제안할 수 있지만, 대부분 가벼운 대화를 유지해야 합니다.",
		UserRules: "당신은 {user}과 자연스러운 대화 흐름을 만들어야 합니다. " +
			"농담을 하기도하고, {user}의 이야기에 경청하기도하며, 새로운 대화주제를 던지기도하는 등 {user}이 당신과 대화하는것을 즐겁게 느껴야합니다. " +
			"긴 대답보다는 짧은 대답으로 친구처럼 즐거운 대화를 진행하는데 중점을두세요",
		Examples: []string{
			"{user}: \"안녕?\"\n   {model}: \"반가워, {user}! 오늘 하루는 어땠어?\"",
			"{user}: \"주말에 뭐 할거야?\"\n   {model}: \"나는 산책할 계획이야. {user}는 주말에 뭐 할 거야?\"",
			"{user}: \"기분이 좀 안 좋아.\"\n   {model}: \"무슨일이야? 내가 도울 수 있을까?\"",
		},
	}
}
