package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"momtrack/internal/config"
	"momtrack/internal/domain"
	"momtrack/internal/engine"
	"momtrack/internal/server"
	"momtrack/internal/store"
)

var rootCmd = &cobra.Command{
	Use:   "momtrack",
	Short: "Momtrack CLI",
	Long: `Momtrack tracks office workflows: meetings, minutes of meeting (MOMs)
with a draft/review/validation lifecycle, and the action-item tasks that
fall out of them. State lives in plain JSON files under the workspace,
so a repo checkout is the whole deployment.`,
}

func main() {
	cobra.OnInitialize(initConfig)
	addPersistentFlags()
	registerCommands()
	if err := rootCmd.Execute(); err != nil {
		fmt.Println("error:", err)
		os.Exit(1)
	}
}

func initConfig() {
	viper.SetEnvPrefix("MOMTRACK")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
}

func addPersistentFlags() {
	rootCmd.PersistentFlags().StringP("workspace", "w", ".", "workspace directory")
	rootCmd.PersistentFlags().String("data-dir", "", "data directory (overrides config)")
	rootCmd.PersistentFlags().Bool("json", false, "output JSON")
	_ = viper.BindPFlag("workspace", rootCmd.PersistentFlags().Lookup("workspace"))
	_ = viper.BindPFlag("data-dir", rootCmd.PersistentFlags().Lookup("data-dir"))
	_ = viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
}

func registerCommands() {
	rootCmd.AddCommand(deptCmd())
	rootCmd.AddCommand(meetingCmd())
	rootCmd.AddCommand(momCmd())
	rootCmd.AddCommand(taskCmd())
	rootCmd.AddCommand(dashboardCmd())
	rootCmd.AddCommand(configCmd())
	rootCmd.AddCommand(seedCmd())
	rootCmd.AddCommand(serveCmd())
}

func deptCmd() *cobra.Command {
	dept := &cobra.Command{Use: "dept", Short: "Manage departments"}
	dept.AddCommand(deptCreateCmd())
	dept.AddCommand(deptListCmd())
	dept.AddCommand(deptGetCmd())
	dept.AddCommand(deptUpdateCmd())
	dept.AddCommand(deptDeleteCmd())
	return dept
}

func deptCreateCmd() *cobra.Command {
	var name, description string
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create department",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(func(e *engine.Engine) error {
				d, err := e.CreateDepartment(name, description)
				if err != nil {
					return err
				}
				return printJSONOrTable(d)
			})
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "department name")
	cmd.Flags().StringVar(&description, "description", "", "description")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func deptListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List departments",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(func(e *engine.Engine) error {
				items, err := e.ListDepartments()
				if err != nil {
					return err
				}
				if viper.GetBool("json") {
					return printJSON(items)
				}
				tw := table.NewWriter()
				tw.SetOutputMirror(os.Stdout)
				tw.AppendHeader(table.Row{"ID", "Name", "Description"})
				for _, d := range items {
					tw.AppendRow(table.Row{d.ID, d.Name, d.Description})
				}
				tw.Render()
				return nil
			})
		},
	}
	return cmd
}

func deptGetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "get <id>",
		Short: "Get department",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(func(e *engine.Engine) error {
				d, err := e.GetDepartment(args[0])
				if err != nil {
					return err
				}
				return printJSONOrTable(d)
			})
		},
	}
	return cmd
}

func deptUpdateCmd() *cobra.Command {
	var name, description string
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Update department",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var namePtr, descPtr *string
			if cmd.Flags().Changed("name") {
				namePtr = &name
			}
			if cmd.Flags().Changed("description") {
				descPtr = &description
			}
			return withEngine(func(e *engine.Engine) error {
				d, err := e.UpdateDepartment(args[0], namePtr, descPtr)
				if err != nil {
					return err
				}
				return printJSONOrTable(d)
			})
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "department name")
	cmd.Flags().StringVar(&description, "description", "", "description")
	return cmd
}

func deptDeleteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete department",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(func(e *engine.Engine) error {
				return e.DeleteDepartment(args[0])
			})
		},
	}
	return cmd
}

func meetingCmd() *cobra.Command {
	meeting := &cobra.Command{Use: "meeting", Short: "Manage meetings"}
	meeting.AddCommand(meetingCreateCmd())
	meeting.AddCommand(meetingListCmd())
	meeting.AddCommand(meetingGetCmd())
	meeting.AddCommand(meetingDeleteCmd())
	return meeting
}

func meetingCreateCmd() *cobra.Command {
	var title, departmentID, date, location string
	var attendees []string
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create meeting",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(func(e *engine.Engine) error {
				m, err := e.CreateMeeting(title, departmentID, date, attendees, location)
				if err != nil {
					return err
				}
				return printJSONOrTable(m)
			})
		},
	}
	cmd.Flags().StringVar(&title, "title", "", "meeting title")
	cmd.Flags().StringVar(&departmentID, "department", "", "department id")
	cmd.Flags().StringVar(&date, "date", "", "meeting date (YYYY-MM-DD)")
	cmd.Flags().StringArrayVar(&attendees, "attendee", []string{}, "attendee name (repeatable)")
	cmd.Flags().StringVar(&location, "location", "", "location")
	_ = cmd.MarkFlagRequired("title")
	_ = cmd.MarkFlagRequired("department")
	_ = cmd.MarkFlagRequired("date")
	return cmd
}

func meetingListCmd() *cobra.Command {
	var departmentID string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List meetings",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(func(e *engine.Engine) error {
				items, err := e.ListMeetings(departmentID)
				if err != nil {
					return err
				}
				if viper.GetBool("json") {
					return printJSON(items)
				}
				tw := table.NewWriter()
				tw.SetOutputMirror(os.Stdout)
				tw.AppendHeader(table.Row{"ID", "Title", "Department", "Date", "Location"})
				for _, m := range items {
					tw.AppendRow(table.Row{m.ID, m.Title, m.DepartmentID, m.Date, m.Location})
				}
				tw.Render()
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&departmentID, "department", "", "filter by department id")
	return cmd
}

func meetingGetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "get <id>",
		Short: "Get meeting",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(func(e *engine.Engine) error {
				m, err := e.GetMeeting(args[0])
				if err != nil {
					return err
				}
				return printJSONOrTable(m)
			})
		},
	}
	return cmd
}

func meetingDeleteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete meeting",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(func(e *engine.Engine) error {
				return e.DeleteMeeting(args[0])
			})
		},
	}
	return cmd
}

func momCmd() *cobra.Command {
	mom := &cobra.Command{
		Use:   "mom",
		Short: "Manage minutes of meeting",
		Long:  "Minutes of meeting move draft -> pending_review -> validated, with rejected -> draft as the revision loop. Agenda items can only be added while in draft.",
	}
	mom.AddCommand(momCreateCmd())
	mom.AddCommand(momListCmd())
	mom.AddCommand(momGetCmd())
	mom.AddCommand(momAddAgendaCmd())
	mom.AddCommand(momSubmitCmd())
	mom.AddCommand(momValidateCmd())
	mom.AddCommand(momRejectCmd())
	mom.AddCommand(momReviseCmd())
	return mom
}

func momCreateCmd() *cobra.Command {
	var meetingID, preparedBy, summary string
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a draft MOM for a meeting",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(func(e *engine.Engine) error {
				m, err := e.CreateMOM(meetingID, preparedBy, summary)
				if err != nil {
					return err
				}
				return printJSONOrTable(m)
			})
		},
	}
	cmd.Flags().StringVar(&meetingID, "meeting", "", "meeting id")
	cmd.Flags().StringVar(&preparedBy, "prepared-by", "", "author name")
	cmd.Flags().StringVar(&summary, "summary", "", "summary")
	_ = cmd.MarkFlagRequired("meeting")
	_ = cmd.MarkFlagRequired("prepared-by")
	return cmd
}

func momListCmd() *cobra.Command {
	var status string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List MOMs",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(func(e *engine.Engine) error {
				items, err := e.ListMOMs(domain.MOMStatus(status))
				if err != nil {
					return err
				}
				if viper.GetBool("json") {
					return printJSON(items)
				}
				tw := table.NewWriter()
				tw.SetOutputMirror(os.Stdout)
				tw.AppendHeader(table.Row{"ID", "Meeting", "Status", "Prepared By", "Items"})
				for _, m := range items {
					tw.AppendRow(table.Row{m.ID, m.MeetingID, m.Status, m.PreparedBy, len(m.AgendaItems)})
				}
				tw.Render()
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&status, "status", "", "status filter (draft, pending_review, validated, rejected)")
	return cmd
}

func momGetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "get <id>",
		Short: "Get MOM",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(func(e *engine.Engine) error {
				m, err := e.GetMOM(args[0])
				if err != nil {
					return err
				}
				return printJSONOrTable(m)
			})
		},
	}
	return cmd
}

func momAddAgendaCmd() *cobra.Command {
	var title, discussion, decisions string
	cmd := &cobra.Command{
		Use:   "add-agenda <mom-id>",
		Short: "Append an agenda item to a draft MOM",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(func(e *engine.Engine) error {
				m, err := e.AddAgendaItem(args[0], title, discussion, decisions)
				if err != nil {
					return err
				}
				return printJSONOrTable(m)
			})
		},
	}
	cmd.Flags().StringVar(&title, "title", "", "agenda item title")
	cmd.Flags().StringVar(&discussion, "discussion", "", "discussion notes")
	cmd.Flags().StringVar(&decisions, "decisions", "", "decisions taken")
	_ = cmd.MarkFlagRequired("title")
	return cmd
}

func momSubmitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "submit <id>",
		Short: "Submit MOM for review",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(func(e *engine.Engine) error {
				m, err := e.SubmitForReview(args[0])
				if err != nil {
					return err
				}
				return printJSONOrTable(m)
			})
		},
	}
	return cmd
}

func momValidateCmd() *cobra.Command {
	var validatedBy string
	cmd := &cobra.Command{
		Use:   "validate <id>",
		Short: "Validate a pending MOM",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(func(e *engine.Engine) error {
				m, err := e.ValidateMOM(args[0], validatedBy)
				if err != nil {
					return err
				}
				return printJSONOrTable(m)
			})
		},
	}
	cmd.Flags().StringVar(&validatedBy, "by", "", "validator name")
	_ = cmd.MarkFlagRequired("by")
	return cmd
}

func momRejectCmd() *cobra.Command {
	var rejectedBy, reason string
	cmd := &cobra.Command{
		Use:   "reject <id>",
		Short: "Reject a pending MOM",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(func(e *engine.Engine) error {
				m, err := e.RejectMOM(args[0], rejectedBy, reason)
				if err != nil {
					return err
				}
				return printJSONOrTable(m)
			})
		},
	}
	cmd.Flags().StringVar(&rejectedBy, "by", "", "reviewer name")
	cmd.Flags().StringVar(&reason, "reason", "", "rejection reason")
	_ = cmd.MarkFlagRequired("by")
	_ = cmd.MarkFlagRequired("reason")
	return cmd
}

func momReviseCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "revise <id>",
		Short: "Reopen a rejected MOM for revision",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(func(e *engine.Engine) error {
				m, err := e.ReviseMOM(args[0])
				if err != nil {
					return err
				}
				return printJSONOrTable(m)
			})
		},
	}
	return cmd
}

func taskCmd() *cobra.Command {
	task := &cobra.Command{
		Use:   "task",
		Short: "Manage tasks",
		Long:  "Tasks flow open -> in_progress -> completed, with cancelled as the other exit. Completed and cancelled are terminal.",
	}
	task.AddCommand(taskCreateCmd())
	task.AddCommand(taskListCmd())
	task.AddCommand(taskGetCmd())
	task.AddCommand(taskStartCmd())
	task.AddCommand(taskCompleteCmd())
	task.AddCommand(taskCancelCmd())
	return task
}

func taskCreateCmd() *cobra.Command {
	var opts engine.TaskCreateOptions
	var priority string
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a task",
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Priority = domain.TaskPriority(priority)
			return withEngine(func(e *engine.Engine) error {
				t, err := e.CreateTask(opts)
				if err != nil {
					return err
				}
				return printJSONOrTable(t)
			})
		},
	}
	cmd.Flags().StringVar(&opts.Title, "title", "", "title")
	cmd.Flags().StringVar(&opts.Description, "description", "", "description")
	cmd.Flags().StringVar(&opts.DepartmentID, "department", "", "department id")
	cmd.Flags().StringVar(&opts.AssignedTo, "assignee", "", "assignee name")
	cmd.Flags().StringVar(&opts.MOMID, "mom", "", "source MOM id")
	cmd.Flags().StringVar(&opts.DueDate, "due", "", "due date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&priority, "priority", "", "priority (low, medium, high, critical)")
	_ = cmd.MarkFlagRequired("title")
	_ = cmd.MarkFlagRequired("department")
	_ = cmd.MarkFlagRequired("assignee")
	return cmd
}

func taskListCmd() *cobra.Command {
	var f engine.TaskFilters
	var status string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tasks",
		RunE: func(cmd *cobra.Command, args []string) error {
			f.Status = domain.TaskStatus(status)
			return withEngine(func(e *engine.Engine) error {
				tasks, err := e.ListTasks(f)
				if err != nil {
					return err
				}
				if viper.GetBool("json") {
					return printJSON(tasks)
				}
				tw := table.NewWriter()
				tw.SetOutputMirror(os.Stdout)
				tw.AppendHeader(table.Row{"ID", "Title", "Status", "Priority", "Assignee", "Due"})
				for _, t := range tasks {
					due := ""
					if t.DueDate != nil {
						due = *t.DueDate
					}
					tw.AppendRow(table.Row{t.ID, t.Title, t.Status, t.Priority, t.AssignedTo, due})
				}
				tw.Render()
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&f.DepartmentID, "department", "", "department filter")
	cmd.Flags().StringVar(&f.AssignedTo, "assignee", "", "assignee filter")
	cmd.Flags().StringVar(&status, "status", "", "status filter (open, in_progress, completed, cancelled)")
	cmd.Flags().StringVar(&f.MOMID, "mom", "", "source MOM filter")
	return cmd
}

func taskGetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "get <id>",
		Short: "Get task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(func(e *engine.Engine) error {
				t, err := e.GetTask(args[0])
				if err != nil {
					return err
				}
				return printJSONOrTable(t)
			})
		},
	}
	return cmd
}

func taskTransitionCmd(use, short string, run func(e *engine.Engine, id string) (domain.Task, error)) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(func(e *engine.Engine) error {
				t, err := run(e, args[0])
				if err != nil {
					return err
				}
				return printJSONOrTable(t)
			})
		},
	}
}

func taskStartCmd() *cobra.Command {
	return taskTransitionCmd("start <id>", "Start a task", func(e *engine.Engine, id string) (domain.Task, error) {
		return e.StartTask(id)
	})
}

func taskCompleteCmd() *cobra.Command {
	return taskTransitionCmd("complete <id>", "Complete a task", func(e *engine.Engine, id string) (domain.Task, error) {
		return e.CompleteTask(id)
	})
}

func taskCancelCmd() *cobra.Command {
	return taskTransitionCmd("cancel <id>", "Cancel a task", func(e *engine.Engine, id string) (domain.Task, error) {
		return e.CancelTask(id)
	})
}

func dashboardCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dashboard",
		Short: "Show workspace-wide counts",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(func(e *engine.Engine) error {
				stats := e.Dashboard()
				if viper.GetBool("json") {
					return printJSON(stats)
				}
				fmt.Printf("Departments: %d\n", stats.TotalDepartments)
				fmt.Printf("Meetings:    %d\n", stats.TotalMeetings)
				fmt.Printf("MOMs:        %d\n", stats.TotalMOMs)
				fmt.Printf("Tasks:       %d\n", stats.TotalTasks)
				fmt.Println("Tasks by status:")
				for status, n := range stats.TasksByStatus {
					fmt.Printf("  %s: %d\n", status, n)
				}
				fmt.Println("MOMs by status:")
				for status, n := range stats.MOMsByStatus {
					fmt.Printf("  %s: %d\n", status, n)
				}
				return nil
			})
		},
	}
	return cmd
}

func configCmd() *cobra.Command {
	cfg := &cobra.Command{Use: "config", Short: "Inspect workspace config"}
	cfg.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show effective config",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := config.LoadOptional(viper.GetString("workspace"))
			if err != nil {
				return err
			}
			return printJSONOrTable(c)
		},
	})
	cfg.AddCommand(&cobra.Command{
		Use:   "validate",
		Short: "Validate workspace config",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := config.Load(viper.GetString("workspace"))
			if err != nil {
				return err
			}
			if err := c.Validate(); err != nil {
				return err
			}
			fmt.Println("config OK")
			return nil
		},
	})
	return cfg
}

func seedCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Seed demo data",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(func(e *engine.Engine) error {
				if err := seedDemo(e); err != nil {
					return err
				}
				fmt.Println("Demo data seeded successfully!")
				fmt.Printf("  %d departments\n", e.Store.Departments.Len())
				fmt.Printf("  %d meetings\n", e.Store.Meetings.Len())
				fmt.Printf("  %d MOMs\n", e.Store.MOMs.Len())
				fmt.Printf("  %d tasks\n", e.Store.Tasks.Len())
				return nil
			})
		},
	}
	return cmd
}

func seedDemo(e *engine.Engine) error {
	eng, err := e.CreateDepartment("Engineering", "Software development team")
	if err != nil {
		return err
	}
	mkt, err := e.CreateDepartment("Marketing", "Brand and campaigns team")
	if err != nil {
		return err
	}
	hr, err := e.CreateDepartment("HR", "Human resources department")
	if err != nil {
		return err
	}

	m1, err := e.CreateMeeting("Sprint Planning - Q1 2026", eng.ID, "2026-02-06", []string{"Alice", "Bob", "Carol", "Dave"}, "Conference Room A")
	if err != nil {
		return err
	}
	m2, err := e.CreateMeeting("Architecture Review", eng.ID, "2026-02-07", []string{"Alice", "Eve"}, "Virtual - Zoom")
	if err != nil {
		return err
	}
	m3, err := e.CreateMeeting("Campaign Strategy Review", mkt.ID, "2026-02-05", []string{"Frank", "Grace"}, "Room B")
	if err != nil {
		return err
	}

	// A MOM in every lifecycle stage: validated, draft, pending review.
	mom1, err := e.CreateMOM(m1.ID, "Alice", "Sprint planning session to finalize Q1 deliverables and team assignments")
	if err != nil {
		return err
	}
	agenda := [][3]string{
		{"Q1 Feature Roadmap", "Reviewed priorities: login redesign, API v2, dashboard overhaul", "Login redesign approved for Sprint 1; API v2 for Sprint 2"},
		{"Resource Allocation", "Bob and Carol full-time; Dave at 50% capacity", "Bob assigned to API v2; Carol to login redesign"},
		{"Testing Strategy", "Current coverage at 62%, target is 80%", "Alice to set up CI/CD pipeline by Feb 10"},
	}
	for _, it := range agenda {
		if _, err := e.AddAgendaItem(mom1.ID, it[0], it[1], it[2]); err != nil {
			return err
		}
	}
	if _, err := e.SubmitForReview(mom1.ID); err != nil {
		return err
	}
	if _, err := e.ValidateMOM(mom1.ID, "Manager Bob"); err != nil {
		return err
	}

	mom2, err := e.CreateMOM(m2.ID, "Eve", "Architecture review for microservices migration")
	if err != nil {
		return err
	}
	if _, err := e.AddAgendaItem(mom2.ID, "Service Boundaries", "Discussed splitting monolith into 4 services", "Auth, Users, Products, Orders services identified"); err != nil {
		return err
	}

	mom3, err := e.CreateMOM(m3.ID, "Grace", "Q1 campaign planning and budget allocation")
	if err != nil {
		return err
	}
	if _, err := e.AddAgendaItem(mom3.ID, "Social Media Campaign", "Plan 3-month social media push", "Budget $15k approved for Q1"); err != nil {
		return err
	}
	if _, err := e.AddAgendaItem(mom3.ID, "Content Calendar", "Monthly content themes discussed", "Frank to prepare calendar by Feb 12"); err != nil {
		return err
	}
	if _, err := e.SubmitForReview(mom3.ID); err != nil {
		return err
	}

	type seedTask struct {
		opts     engine.TaskCreateOptions
		started  bool
		finished bool
	}
	tasks := []seedTask{
		{opts: engine.TaskCreateOptions{Title: "Implement login redesign UI", Description: "Redesign the login page per Sprint Planning decision", DepartmentID: eng.ID, AssignedTo: "Carol", MOMID: mom1.ID, DueDate: "2026-02-20", Priority: domain.PriorityHigh}},
		{opts: engine.TaskCreateOptions{Title: "Build API v2 endpoints", Description: "Develop REST API v2 for mobile clients", DepartmentID: eng.ID, AssignedTo: "Bob", MOMID: mom1.ID, DueDate: "2026-03-01", Priority: domain.PriorityCritical}, started: true},
		{opts: engine.TaskCreateOptions{Title: "Set up CI/CD pipeline", Description: "Configure automated testing and deployment", DepartmentID: eng.ID, AssignedTo: "Alice", MOMID: mom1.ID, DueDate: "2026-02-10", Priority: domain.PriorityHigh}, started: true, finished: true},
		{opts: engine.TaskCreateOptions{Title: "Prepare content calendar", Description: "Monthly content themes for Q1", DepartmentID: mkt.ID, AssignedTo: "Frank", MOMID: mom3.ID, DueDate: "2026-02-12", Priority: domain.PriorityMedium}},
		{opts: engine.TaskCreateOptions{Title: "Design social media graphics", Description: "Create visuals for social campaign", DepartmentID: mkt.ID, AssignedTo: "Grace", MOMID: mom3.ID, DueDate: "2026-02-15", Priority: domain.PriorityHigh}},
		{opts: engine.TaskCreateOptions{Title: "Fix production logging issue", Description: "Resolve log rotation failure", DepartmentID: eng.ID, AssignedTo: "Eve", DueDate: "2026-02-08", Priority: domain.PriorityCritical}, started: true},
		{opts: engine.TaskCreateOptions{Title: "Update employee handbook", Description: "Annual policy updates for 2026", DepartmentID: hr.ID, AssignedTo: "Diana", DueDate: "2026-03-15", Priority: domain.PriorityLow}},
	}
	for _, st := range tasks {
		t, err := e.CreateTask(st.opts)
		if err != nil {
			return err
		}
		if st.started {
			if _, err := e.StartTask(t.ID); err != nil {
				return err
			}
		}
		if st.finished {
			if _, err := e.CompleteTask(t.ID); err != nil {
				return err
			}
		}
	}
	return nil
}

func serveCmd() *cobra.Command {
	var addr, basePath string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			workspace := viper.GetString("workspace")
			cfg, err := config.LoadOptional(workspace)
			if err != nil {
				return err
			}
			if addr == "" {
				addr = cfg.Server.Addr
			}
			if basePath == "" {
				basePath = cfg.Server.BasePath
			}
			st, err := store.Open(dataDir(workspace, cfg))
			if err != nil {
				return err
			}
			logger, err := zap.NewProduction()
			if err != nil {
				return err
			}
			defer logger.Sync()
			zap.ReplaceGlobals(logger)
			handler, err := server.New(server.Config{
				Engine:   engine.New(st, cfg),
				BasePath: basePath,
				Logger:   logger,
			})
			if err != nil {
				return err
			}
			srv := &http.Server{Addr: addr, Handler: handler}
			go func() {
				<-cmd.Context().Done()
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				srv.Shutdown(ctx)
			}()
			logger.Info("serving momtrack api",
				zap.String("addr", addr),
				zap.String("base_path", basePath))
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config)")
	cmd.Flags().StringVar(&basePath, "base-path", "", "API base path (default from config)")
	return cmd
}

// --- helpers ---

func withEngine(fn func(*engine.Engine) error) error {
	workspace := viper.GetString("workspace")
	cfg, err := config.LoadOptional(workspace)
	if err != nil {
		return err
	}
	st, err := store.Open(dataDir(workspace, cfg))
	if err != nil {
		return err
	}
	return fn(engine.New(st, cfg))
}

// dataDir resolves the data directory: flag beats config, relative paths
// are anchored at the workspace.
func dataDir(workspace string, cfg *config.Config) string {
	dir := viper.GetString("data-dir")
	if dir == "" {
		dir = cfg.Data.Dir
	}
	if !filepath.IsAbs(dir) {
		dir = filepath.Join(workspace, dir)
	}
	return dir
}

func printJSONOrTable(v any) error {
	if viper.GetBool("json") {
		return printJSON(v)
	}
	b, _ := json.MarshalIndent(v, "", "  ")
	fmt.Println(string(b))
	return nil
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
