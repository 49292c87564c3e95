package ai

import (
	"fmt"
	"math/rand"
)

var greetingTemplates = []string{
	"안녕하세요, %s! 오늘 하루는 어떠셨어요?",
	"반가워요, %s! 오늘 기분은 어떠신가요?",
	"안녕하세요, %s! 좋은 하루 보내고 계신가요?",
	"안녕, %s! 오늘 무슨 일이 있었나요?",
	"안녕하세요, %s! 오늘은 무슨 계획이 있으신가요?",
	"안녕하세요, %s! 요즘 어떻게 지내세요?",
	"안녕, %s! 최근에 특별한 일이 있었나요?",
	"안녕하세요, %s! 오늘 하루는 어떻게 보내셨나요?",
	"안녕, %s! 요즘 컨디션은 어떤가요?",
	"안녕하세요, %s! 요즘 무슨 생각을 하고 계신가요?",
}

// Greeter picks an opening line addressed to the user.
type Greeter struct {
	pick func(n int) int
}

// NewGreeter returns a Greeter. pick chooses an index in [0, n); nil uses a
// uniform random choice.
func NewGreeter(pick func(n int) int) *Greeter {
	if pick == nil {
		pick = rand.Intn
	}
	return &Greeter{pick: pick}
}

// Greet returns one of the opening lines for userName.
func (g *Greeter) Greet(userName string) string {
	return fmt.Sprintf(greetingTemplates[g.pick(len(greetingTemplates))], userName)
}
