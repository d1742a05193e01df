package bot

// stateKind tags the step a user's conversation is at.
type stateKind int

const (
	stateIdle stateKind = iota
	stateAwaitingHabitName
	stateAwaitingHabitChoice
	stateAwaitingDeleteConfirm
	stateAwaitingReminderTime
	stateAwaitingReminderDays
)

// choiceMode distinguishes what a habit choice is for.
type choiceMode int

const (
	modeDone choiceMode = iota
	modeDelete
)

// state is the conversation position of one user plus whatever the pending
// step needs carried over: the choice mode, the habit awaiting delete
// confirmation, or the reminder time awaiting a day choice.
type state struct {
	kind stateKind

	mode         choiceMode // stateAwaitingHabitChoice
	pendingHabit string     // stateAwaitingDeleteConfirm: habit id
	pendingName  string     // stateAwaitingDeleteConfirm: habit name, for the prompt
	pendingTime  string     // stateAwaitingReminderDays: validated HH:MM
}

func idle() state {
	return state{kind: stateIdle}
}
