package exams

import "examtrack/internal/model"

// Notifier is told when an exam's reminders need (re)scheduling.
type Notifier interface {
	Schedule(exam model.Exam)
	Reschedule(exam model.Exam)
}

// LogNotifier simulates reminder delivery by logging. Nothing is delivered.
type LogNotifier struct {
	logger Logger
}

func NewLogNotifier(logger Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) Schedule(exam model.Exam) {
	n.logger.Info("notifications scheduled (simulated)", "exam", exam.ExamName, "id", exam.ID)
}

func (n *LogNotifier) Reschedule(exam model.Exam) {
	n.logger.Info("notifications rescheduled (simulated)", "exam", exam.ExamName, "id", exam.ID)
}
