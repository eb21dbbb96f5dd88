package conversation

// FlagLeadCaptured marks that the lead-capture channel has been invoked for
// this conversation. It is the write-once guard that makes lead capture
// at-most-once.
const FlagLeadCaptured = "lead_captured"

// Flags is a write-once flag set. There is deliberately no way to unset a
// flag: once raised, a flag stays raised for the life of the conversation.
type Flags map[string]bool

// Set raises a flag. It reports whether the flag was newly raised.
func (f Flags) Set(name string) bool {
	if f[name] {
		return false
	}
	f[name] = true
	return true
}

// Has reports whether a flag is raised.
func (f Flags) Has(name string) bool {
	return f[name]
}
