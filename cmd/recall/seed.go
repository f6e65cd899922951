package main

import (
	"fmt"
	"time"

	"github.com/poiesic/recall/core"
	"github.com/urfave/cli/v2"
)

type demoDocument struct {
	title      string
	body       string
	sourceType core.SourceType
	author     string
	age        time.Duration
}

var demoDocuments = []demoDocument{
	{
		title: "Machine Learning Fundamentals",
		body: `Machine learning is a subset of artificial intelligence that focuses on algorithms that can learn from data.

Key concepts include:
- Supervised learning: Learning from labeled examples
- Unsupervised learning: Finding patterns in unlabeled data
- Reinforcement learning: Learning through trial and error

Popular algorithms include linear regression, decision trees, neural networks, and support vector machines. The field has applications in computer vision, natural language processing, and predictive analytics.`,
		sourceType: core.SourceTypeText,
		author:     "AI Research Team",
		age:        45 * 24 * time.Hour,
	},
	{
		title: "Project Management Best Practices",
		body: `Effective project management requires careful planning and execution. Here are key principles:

1. Define clear objectives and scope
2. Create detailed project timelines
3. Identify and manage risks early
4. Maintain regular communication with stakeholders
5. Monitor progress and adjust as needed

Agile methodologies like Scrum have become popular for software development projects. They emphasize iterative development, frequent feedback, and adaptability to change.`,
		sourceType: core.SourceTypePDF,
		author:     "Project Management Institute",
		age:        20 * 24 * time.Hour,
	},
	{
		title: "Meeting Notes - Q4 Planning",
		body: `Attendees: Sarah, Mike, Jennifer, Alex

Key Discussion Points:
- Q4 revenue targets looking strong, up 15% from last quarter
- New product launch scheduled for November
- Marketing campaign needs additional budget approval
- Engineering team requests 2 additional developers
- Customer feedback has been overwhelmingly positive

Action Items:
- Sarah: Prepare budget proposal by Friday
- Mike: Interview candidates for engineering roles
- Jennifer: Finalize marketing materials
- Alex: Schedule customer success review`,
		sourceType: core.SourceTypeText,
		age:        5 * 24 * time.Hour,
	},
	{
		title: "Quantum Computing Overview",
		body: `Quantum computing represents a paradigm shift in computational power. Unlike classical computers that use bits (0 or 1), quantum computers use quantum bits or qubits that can exist in superposition.

Key principles:
- Superposition: Qubits can be in multiple states simultaneously
- Entanglement: Qubits can be correlated in ways that classical physics cannot explain
- Quantum interference: Allows quantum algorithms to amplify correct answers

Applications include cryptography, drug discovery, financial modeling and machine learning acceleration.`,
		sourceType: core.SourceTypePDF,
		author:     "Quantum Research Lab",
		age:        90 * 24 * time.Hour,
	},
	{
		title: "Audio Transcript - Team Standup",
		body: `Speaker 1: Good morning everyone, let's start with our daily standup. Sarah, what did you work on yesterday?

Speaker 2: I finished the user authentication module and started working on the dashboard components. Today I'll be focusing on the data visualization charts.

Speaker 3: I completed the API integration for the payment system. Had some issues with the webhook configuration but got it sorted out. Today I'm tackling the notification service.

Speaker 2: I might need some help with the chart library integration. The documentation is a bit unclear.`,
		sourceType: core.SourceTypeAudio,
		age:        2 * 24 * time.Hour,
	},
	{
		title:      "Weekend Recipe",
		body:       "Slow roasted tomatoes with garlic, olive oil and fresh basil. Roast at 150C for three hours and serve over pasta.",
		sourceType: core.SourceTypeWeb,
		age:        9 * 24 * time.Hour,
	},
}

func seedCommand() *cli.Command {
	return &cli.Command{
		Name:   "seed",
		Usage:  "Load a small demo corpus with timestamps relative to now",
		Action: seedAction,
	}
}

func seedAction(c *cli.Context) error {
	db, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	pipeline, err := db.NewIngestionPipeline()
	if err != nil {
		return fmt.Errorf("failed to create ingestion pipeline: %w", err)
	}
	defer pipeline.Release()

	now := time.Now()
	docs := make([]*core.Document, 0, len(demoDocuments))
	for _, d := range demoDocuments {
		doc := &core.Document{
			Title:      d.title,
			Body:       d.body,
			SourceType: d.sourceType,
			Timestamp:  now.Add(-d.age),
			Metadata:   map[string]string{"source_path": "demo/" + d.title},
		}
		if d.author != "" {
			doc.Metadata["author"] = d.author
		}
		docs = append(docs, doc)
	}

	added, err := pipeline.Ingest(c.Context, docs, nil)
	if err != nil {
		return fmt.Errorf("seeding failed: %w", err)
	}
	pipeline.Wait()

	for _, doc := range added {
		fmt.Fprintf(c.App.Writer, "  %-6s %s\n", doc.SourceType, doc.Title)
	}
	fmt.Fprintf(c.App.Writer, "Seeded %d demo documents\n", len(added))
	return nil
}
