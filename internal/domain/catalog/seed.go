package catalog

import (
	"slices"
	"time"
)

func mustTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return t
}

var seedEvents = []Event{
	{
		ID:               "1",
		Title:            "Web Development Hackathon",
		Description:      "A 24-hour hackathon focused on web development technologies.",
		Type:             EventTypeHackathon,
		Date:             "2023-12-15",
		Location:         "Engineering Building, Room 301",
		Committee:        "Computer Science Committee",
		RegistrationLink: "https://forms.google.com/register-hackathon",
		Attachments:      []string{"hackathon-details.pdf"},
		CreatedAt:        mustTime("2023-11-20T10:30:00Z"),
		CreatedBy:        "committee@somaiya.edu",
	},
	{
		ID:               "2",
		Title:            "React Workshop",
		Description:      "Learn the fundamentals of React and build your first app.",
		Type:             EventTypeWorkshop,
		Date:             "2023-12-05",
		Location:         "Virtual (Zoom)",
		Committee:        "Developer Club",
		RegistrationLink: "https://forms.google.com/register-workshop",
		Attachments:      []string{"react-workshop.pdf"},
		CreatedAt:        mustTime("2023-11-22T09:15:00Z"),
		CreatedBy:        "committee@somaiya.edu",
	},
	{
		ID:               "3",
		Title:            "Summer Internship - Software Development",
		Description:      "Summer internship opportunity for students interested in software development.",
		Type:             EventTypeInternship,
		Date:             "2024-05-01",
		Location:         "Mumbai",
		Committee:        "Training and Placement Cell",
		RegistrationLink: "https://forms.google.com/apply-internship",
		Attachments:      []string{"internship-details.pdf"},
		CreatedAt:        mustTime("2023-11-23T14:45:00Z"),
		CreatedBy:        "committee@somaiya.edu",
	},
}

var seedExamFiles = []ExamFile{
	{
		ID:         "1",
		Title:      "Computer Science Semester 5 Exam Timetable",
		Type:       ExamFileTimetable,
		Department: "Computer Science",
		Semester:   "5",
		FileURL:    "/timetables/cs-sem5.pdf",
		UploadedAt: mustTime("2023-11-20T10:00:00Z"),
		UploadedBy: "examcell@somaiya.edu",
	},
	{
		ID:         "2",
		Title:      "Electronics Engineering Semester 3 Exam Results",
		Type:       ExamFileResult,
		Department: "Electronics Engineering",
		Semester:   "3",
		FileURL:    "/results/ee-sem3.pdf",
		UploadedAt: mustTime("2023-11-22T14:30:00Z"),
		UploadedBy: "examcell@somaiya.edu",
	},
	{
		ID:         "3",
		Title:      "Mechanical Engineering Semester 7 Exam Timetable",
		Type:       ExamFileTimetable,
		Department: "Mechanical Engineering",
		Semester:   "7",
		FileURL:    "/timetables/mech-sem7.pdf",
		UploadedAt: mustTime("2023-11-24T09:45:00Z"),
		UploadedBy: "examcell@somaiya.edu",
	},
}

// SeedEvents returns a copy of the built-in demo events.
func SeedEvents() []Event {
	out := make([]Event, len(seedEvents))
	for i, e := range seedEvents {
		e.Attachments = slices.Clone(e.Attachments)
		out[i] = e
	}
	return out
}

// SeedExamFiles returns a copy of the built-in demo exam files.
func SeedExamFiles() []ExamFile {
	return slices.Clone(seedExamFiles)
}
