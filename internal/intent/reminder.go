package intent

import "strings"

var (
	timeKeywords = map[string]struct{}{"at": {}, "on": {}, "by": {}}
	taskKeywords = map[string]struct{}{"to": {}, "about": {}, "that": {}}
)

// strategy is one way of reading a reminder command. Spoken reminders come in
// either order ("remind me at 4pm to X", "remind me to X at 4pm"), so several
// readings are tried and the first that yields both slots wins.
type strategy struct {
	name    string
	extract func(words []string) (task, when string, ok bool)
}

var strategies = []strategy{
	{name: "time_first", extract: timeFirst},
	{name: "task_first", extract: taskFirst},
	{name: "task_with_trailing_time", extract: taskWithTrailingTime},
}

// ExtractReminder pulls the task and time phrase out of a reminder command.
// Keywords are matched as whole words so "water" does not split on "at".
func ExtractReminder(command string) (map[string]string, bool) {
	words := strings.Fields(strings.ToLower(command))
	for _, s := range strategies {
		task, when, ok := s.extract(words)
		if ok {
			return map[string]string{SlotTask: task, SlotTime: when}, true
		}
	}
	return nil, false
}

// timeFirst reads "... at <time> to <task>".
func timeFirst(words []string) (string, string, bool) {
	i := indexOf(words, timeKeywords)
	if i < 0 {
		return "", "", false
	}
	rest := words[i+1:]
	j := indexOf(rest, taskKeywords)
	if j < 0 {
		return "", "", false
	}
	return complete(rest[j+1:], rest[:j])
}

// taskFirst reads "... at <time> ... to <task>" where the time sits before
// the task keyword but is not directly followed by it.
func taskFirst(words []string) (string, string, bool) {
	j := indexOf(words, taskKeywords)
	if j < 0 {
		return "", "", false
	}
	left := words[:j]
	i := indexOf(left, timeKeywords)
	if i < 0 {
		return "", "", false
	}
	return complete(words[j+1:], left[i+1:])
}

// taskWithTrailingTime reads "... to <task> at <time>".
func taskWithTrailingTime(words []string) (string, string, bool) {
	j := indexOf(words, taskKeywords)
	if j < 0 {
		return "", "", false
	}
	right := words[j+1:]
	k := lastIndexOf(right, timeKeywords)
	if k < 0 {
		return "", "", false
	}
	return complete(right[:k], right[k+1:])
}

// slotPunct is stripped from the ends of extracted slots so typed commands
// like "... at 4pm." still parse.
const slotPunct = ".,!?;:"

func complete(task, when []string) (string, string, bool) {
	t := strings.Trim(strings.Join(task, " "), slotPunct)
	w := strings.Trim(strings.Join(when, " "), slotPunct)
	if t == "" || w == "" {
		return "", "", false
	}
	return t, w, true
}

func indexOf(words []string, set map[string]struct{}) int {
	for i, w := range words {
		if _, ok := set[strings.Trim(w, slotPunct)]; ok {
			return i
		}
	}
	return -1
}

func lastIndexOf(words []string, set map[string]struct{}) int {
	for i := len(words) - 1; i >= 0; i-- {
		if _, ok := set[strings.Trim(words[i], slotPunct)]; ok {
			return i
		}
	}
	return -1
}
