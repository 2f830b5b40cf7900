// Package faq answers common portfolio questions without any network access.
// It is the chat widget's fallback when the inference backend is unavailable.
package faq

import "strings"

// Rule maps a normalized message to a canned markdown answer.
type Rule struct {
	Topic  string
	Match  func(msg string) bool
	Answer string
}

func containsAny(keywords ...string) func(string) bool {
	return func(msg string) bool {
		for _, k := range keywords {
			if strings.Contains(msg, k) {
				return true
			}
		}
		return false
	}
}

// Rules are evaluated in order and the first match wins.
var Rules = []Rule{
	{
		Topic:  "projects",
		Match:  containsAny("project", "work"),
		Answer: projectsAnswer,
	},
	{
		Topic:  "skills",
		Match:  containsAny("skill", "technology", "tech stack"),
		Answer: skillsAnswer,
	},
	{
		Topic:  "computer-vision",
		Match:  containsAny("yolo", "detection", "computer vision"),
		Answer: visionAnswer,
	},
	{
		Topic:  "experience",
		Match:  containsAny("experience", "background"),
		Answer: experienceAnswer,
	},
	{
		// Must come before contact, which also matches "hire".
		Topic: "why-hire",
		Match: func(msg string) bool {
			return strings.Contains(msg, "why") && containsAny("hire", "choose")(msg)
		},
		Answer: whyHireAnswer,
	},
	{
		Topic:  "contact",
		Match:  containsAny("contact", "email", "reach", "hire"),
		Answer: contactAnswer,
	},
	{
		Topic:  "neural-style-transfer",
		Match:  containsAny("neural style", "style transfer", "artistic"),
		Answer: styleTransferAnswer,
	},
	{
		Topic:  "steganography",
		Match:  containsAny("steganography", "security", "encryption"),
		Answer: steganographyAnswer,
	},
	{
		Topic:  "campus-security",
		Match:  containsAny("campus", "security", "plate"),
		Answer: campusSecurityAnswer,
	},
}

// DefaultTopic is reported by Classify when no rule matches.
const DefaultTopic = "default"

// Match returns the canned answer for message. It never returns an empty string.
func Match(message string) string {
	_, answer := Classify(message)
	return answer
}

// Classify returns the topic of the first matching rule together with its answer.
func Classify(message string) (topic, answer string) {
	msg := strings.ToLower(message)
	for _, r := range Rules {
		if r.Match(msg) {
			return r.Topic, r.Answer
		}
	}
	return DefaultTopic, DefaultAnswer
}
