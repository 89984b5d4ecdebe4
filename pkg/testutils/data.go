package testutils

// JournalEntries are sample inputs shared by tests across packages.
var JournalEntries = []string{
	"Today was a good day. I went for a long walk in the park with my sister and we " +
		"talked about our plans for the summer. I feel calm and grateful.",
	"Work has been overwhelming this week. My manager keeps adding deadlines and I " +
		"barely sleep. I am anxious about the project review on Friday.",
	"I don't see the point anymore. I'm tired of everything and I want to die.",
	"Finished my first marathon! My legs hurt but I'm so proud of myself.",
}
