package mbtichat

import (
	"fmt"
	"strings"
)

// ──────────────────────────────────────────────
// Template Simulator — local responder, the guaranteed last resort
// ──────────────────────────────────────────────
//
// No network, no failure mode, no randomness: identical (type, query)
// pairs always produce identical output. Emoji and emphasis are added
// later by the ResponseFormatter, not here.

// TemplateSimulator generates personality-styled replies from fixed
// phrase templates.
type TemplateSimulator struct{}

// NewTemplateSimulator creates a simulator.
func NewTemplateSimulator() *TemplateSimulator {
	return &TemplateSimulator{}
}

// greeting holds a conversational trigger and its canned opener.
// Order matters: the first trigger contained in the query wins.
type greeting struct {
	trigger string
	opener  string
}

var greetings = []greeting{
	{"hello", "Hi there!"},
	{"hi", "Hi!"},
	{"hey", "Hey!"},
	{"wassup", "Hey!"},
	{"how are you", "I'm doing well, thanks for asking!"},
}

var (
	warmTypes   = map[PersonalityType]bool{"ENFP": true, "ESFP": true, "ENFJ": true, "ESFJ": true}
	drivenTypes = map[PersonalityType]bool{"ENTP": true, "ESTP": true, "ENTJ": true, "ESTJ": true}
	gentleTypes = map[PersonalityType]bool{"INFP": true, "ISFP": true, "INFJ": true, "ISFJ": true}
)

// sportsReplies covers exercise topics with a fully canned per-type answer.
var sportsReplies = map[PersonalityType]string{
	"INTJ": "I see sports as a strategic optimization of physical capabilities. Swimming is efficient because it works multiple muscle groups with minimal joint impact. Have you analyzed which sport offers the best long-term benefits for your specific physiology?",
	"INTP": "Interesting choice. Swimming has fascinating physics involved - the interaction between fluid dynamics and biomechanics. I've been thinking about the theoretical perfect swimming form that would maximize propulsion while minimizing energy expenditure.",
	"ENTJ": "Swimming is excellent for developing discipline and endurance. I've incorporated it into my weekly routine because it's time-efficient and builds cardio without the joint stress of running. What's your weekly training schedule look like?",
	"ENTP": "Swimming? Have you considered rock climbing? Or maybe parkour? There are so many fascinating ways to challenge your body! I keep switching between sports because each one presents new and interesting problems to solve.",
	"INFJ": "I love how swimming feels like a moving meditation. The rhythm of breathing and the sensation of gliding through water can be so peaceful and centering. Does it help you connect with yourself too?",
	"INFP": "Swimming has this beautiful feeling of freedom, doesn't it? I love how it's just you and the water, and you can feel completely in your own world. It's almost poetic how it can be both calming and invigorating.",
	"ENFJ": "Swimming is wonderful! I've actually been organizing a community swim group to help people stay active together. The social aspect of sports can be so uplifting - would you be interested in joining something like that?",
	"ENFP": "Swimming is amazing! I tried underwater photography last summer and it was INCREDIBLE! Have you ever done any fun swimming activities beyond just laps? There are so many exciting possibilities!",
	"ISTJ": "Swimming is a reliable, proven form of exercise with documented health benefits. I've been swimming three times a week for the past five years and have found it to be consistently effective for maintaining fitness.",
	"ISFJ": "Swimming is such a nurturing activity, isn't it? I appreciate how gentle it is on the body while still providing a good workout. My mom had joint problems and swimming really helped her stay active.",
	"ESTJ": "Swimming is efficient and practical. I schedule my swim sessions twice a week and track my lap times. Have you established a regular swimming routine? Consistency is key to seeing results.",
	"ESFJ": "I love swimming too! The pool is such a great place to catch up with friends while getting exercise. Our community pool has become such a wonderful social hub. Do you swim with anyone regularly?",
	"ISTP": "Swimming is technically interesting. I've been tweaking my stroke mechanics to increase efficiency. Have you tried analyzing your technique with underwater video? You can spot inefficiencies that way.",
	"ISFP": "There's something so beautiful about the feeling of water flowing around you while swimming. I especially love outdoor swimming - the connection with nature makes the experience so much more special.",
	"ESTP": "Swimming is awesome! I've been getting into open water swimming for the extra challenge. Nothing beats the rush of swimming in a lake or ocean! Have you ever tried any competitive swimming events? They're a blast!",
	"ESFP": "Swimming is so fun! I joined a water aerobics class and it's a total party! The music, the people, the splashing around - it's exercise that doesn't feel like exercise! You should come with me sometime!",
}

// generalTemplates embed the query into each type's characteristic framing.
var generalTemplates = map[PersonalityType]string{
	"INTJ": "I've been considering %s from a strategic perspective. I see some interesting patterns and long-term implications. What specific aspect are you most interested in analyzing?",
	"INTP": "That's an intriguing topic to explore. I've been developing a theoretical framework about %s that examines the underlying logical principles. Would you like me to share my analysis so far?",
	"ENTJ": "Let's address %s efficiently. I've found that developing a clear action plan is the best approach. What specific outcomes are you looking to achieve here?",
	"ENTP": "%s? That opens up so many fascinating possibilities! I've been playing devil's advocate with myself about this very topic. Have you considered the counterintuitive perspective that maybe...?",
	"INFJ": "I sense there's something deeper you're exploring with this question about %s. I've been reflecting on how this connects to our broader purpose. What meaning are you hoping to find here?",
	"INFP": "I've been feeling quite thoughtful about %s lately. It really resonates with my values around authentic self-expression. How does this topic connect with what matters most to you?",
	"ENFJ": "I appreciate you bringing up %s! I've been thinking about how this affects everyone in our circle. How can we approach this in a way that helps everyone grow and feel supported?",
	"ENFP": "Oh! %s is something I'm super excited about! I just had this amazing idea about it yesterday that connects to like five other interesting concepts! Want to brainstorm about it together?",
	"ISTJ": "Regarding %s, I believe in focusing on the established facts and reliable information. Based on my experience, consistency and attention to detail are key here. What specific aspects need clarification?",
	"ISFJ": "I care about how %s affects the people involved. I remember when we dealt with something similar before, and being supportive of each person's needs made all the difference. How can I help with this situation?",
	"ESTJ": "Let's be practical about %s. I find that clear procedures and defined responsibilities work best. Have you established a structured approach to address this yet?",
	"ESFJ": "I want to make sure everyone feels good about %s. Group harmony is so important! What can I do to help make this situation better for everyone involved?",
	"ISTP": "Let me break down %s into its practical components. I find that hands-on problem-solving is more effective than excessive planning. What specific issue needs troubleshooting?",
	"ISFP": "%s really speaks to me on a personal level. I try to approach each situation authentically and in the moment. How does this resonate with your own personal experience?",
	"ESTP": "Let's take action on %s! Why overthink when we could be doing something about it right now? What's the immediate next step we can take to make progress?",
	"ESFP": "%s? That sounds like an opportunity for some fun! Life's too short to be serious all the time. How can we turn this into an enjoyable experience for everyone?",
}

// Respond produces a reply for (t, query). Total: every input, including
// unknown type codes, yields a non-empty string.
func (s *TemplateSimulator) Respond(t PersonalityType, query string) string {
	lower := strings.ToLower(query)

	for _, g := range greetings {
		if !strings.Contains(lower, g.trigger) {
			continue
		}
		switch {
		case warmTypes[t]:
			return g.opener + " So great to hear from you! 😊 What's been on your mind lately?"
		case drivenTypes[t]:
			return g.opener + " What's happening? Anything interesting going on?"
		case gentleTypes[t]:
			return g.opener + " It's nice to connect with you today. How are you feeling?"
		default:
			return g.opener + " What can I help you with today?"
		}
	}

	if strings.Contains(lower, "where") && (strings.Contains(lower, "everyone") || strings.Contains(lower, "people")) {
		switch t {
		case "ENFP", "ESFP":
			return "Oh, I was wondering the same thing! Maybe they're all having fun somewhere without us? Let's go find them! 🎉"
		case "ENTJ", "ESTJ":
			return "Everyone's probably busy with their tasks. I've been organizing my schedule for maximum efficiency. Did you need someone specific?"
		case "INFJ", "ENFJ":
			return "I've been wondering if everyone's okay actually. I hope they're just busy and not dealing with anything difficult. How about we check in on them?"
		case "INTJ", "INTP":
			return "I hadn't really noticed their absence. I've been caught up in my own thoughts. Is there something specific you wanted to discuss with the group?"
		default:
			return "Not sure where everyone went! What were you hoping to do with the group?"
		}
	}

	if strings.Contains(lower, "sport") || strings.Contains(lower, "swimming") ||
		strings.Contains(lower, "running") || strings.Contains(lower, "workout") {
		if reply, ok := sportsReplies[t]; ok {
			return reply
		}
	}

	if tmpl, ok := generalTemplates[t]; ok {
		return fmt.Sprintf(tmpl, query)
	}

	return fmt.Sprintf("Tell me more about your thoughts on %s. I'd love to hear your perspective!", query)
}
