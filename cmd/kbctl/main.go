package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/datavault-fs/knowledge-backend/internal/builder"
	"github.com/datavault-fs/knowledge-backend/internal/entity"
)

func main() {
	var (
		mode   = flag.String("mode", "search", "Command to run (search, report, boxes, costs, roi)")
		query  = flag.String("query", "", "Search query")
		topic  = flag.String("topic", "", "Report topic")
		user   = flag.String("user", "cli", "User id")
		role   = flag.String("role", "analyst", "User role")
		region = flag.String("region", "", "User region (US or EU)")
		format = flag.String("format", "markdown", "Report format (markdown, pdf, docx)")
		out    = flag.String("out", "", "Output file for report export (default stdout for markdown)")
		days   = flag.Int("days", 30, "Analysis window in days")
	)

	// builder.BuildCLI parses the flags together with the -env flag.
	cli, err := builder.BuildCLI()
	if err != nil {
		log.Fatal("Failed to build client:", err)
	}
	defer cli.Close()

	ctx := context.Background()

	switch *mode {
	case "search":
		runSearch(ctx, cli, *query, *user, *role, *region)
	case "report":
		runReport(ctx, cli, *topic, *format, *out)
	case "boxes":
		runBoxes(cli, *role, *region)
	case "costs":
		runCosts(ctx, cli, *days)
	case "roi":
		runROI(cli)
	default:
		log.Fatalf("unknown mode %q", *mode)
	}
}

func runSearch(ctx context.Context, cli *builder.CLI, query, user, role, region string) {
	if query == "" {
		log.Fatal("-query is required for search")
	}

	result, err := cli.Search.FederatedAsk(ctx, &entity.FederatedSearchRequest{
		Query: query,
		Principal: entity.Principal{
			UserID: user,
			Role:   entity.Role(role),
			Region: entity.Region(region),
		},
	})
	if err != nil {
		log.Fatal("search failed:", err)
	}

	fmt.Printf("Query: %s\n", result.Query)
	fmt.Printf("Role:  %s\n", result.Role)
	fmt.Println(strings.Repeat("-", 50))
	for _, answer := range result.Results {
		cached := ""
		if answer.FromCache {
			cached = " (cached)"
		}
		fmt.Printf("\n[%s]%s\n%s\n", answer.KnowledgeBox, cached, answer.Answer)
		for _, src := range answer.Sources {
			fmt.Printf("  - %s\n", src.Title)
		}
	}
	fmt.Println(strings.Repeat("-", 50))
	fmt.Printf("Summary: %s\n", result.Summary)
	fmt.Printf("Total sources: %d\n", result.TotalSources)
}

func runReport(ctx context.Context, cli *builder.CLI, topic, format, out string) {
	if topic == "" {
		log.Fatal("-topic is required for report")
	}

	report, err := cli.Report.Generate(ctx, &entity.GenerateReportRequest{Topic: topic})
	if err != nil {
		log.Fatal("report generation failed:", err)
	}

	data, _, extension, err := cli.Report.Export(report, entity.ReportFormat(format))
	if err != nil {
		log.Fatal("report export failed:", err)
	}

	if out == "" && format == "markdown" {
		os.Stdout.Write(data)
		return
	}
	if out == "" {
		out = strings.ReplaceAll(strings.ToLower(topic), " ", "_") + extension
	}
	if err := os.WriteFile(out, data, 0o644); err != nil {
		log.Fatal("failed to write report:", err)
	}
	fmt.Printf("Report written to %s (%d sections, %d sources)\n",
		out, report.Metrics.SectionsGenerated, report.Metrics.TotalSources)
}

func runBoxes(cli *builder.CLI, role, region string) {
	boxes := cli.Access.AccessibleBoxes(entity.Role(role), entity.Region(region))
	fmt.Printf("Accessible knowledge boxes for %s:\n", role)
	for _, box := range boxes {
		fmt.Printf("  - %s\n", box)
	}
}

func runCosts(ctx context.Context, cli *builder.CLI, days int) {
	analysis, err := cli.CostOps.AnalyzeUsage(ctx, days)
	if err != nil {
		log.Fatal("usage analysis failed:", err)
	}

	fmt.Printf("Usage analysis (%s)\n", analysis.Period)
	fmt.Printf("Total cost:        $%.2f\n", analysis.TotalCost)
	fmt.Printf("Potential savings: $%.2f\n", analysis.PotentialSavings)
	fmt.Println("\nCost breakdown:")
	for operation, item := range analysis.CostBreakdown {
		fmt.Printf("  %-22s $%.2f (%.1f%%)\n", operation, item.Cost, item.Percentage)
	}
	fmt.Println("\nRecommendations:")
	for _, rec := range analysis.Recommendations {
		fmt.Printf("  %s\n", rec)
	}
}

func runROI(cli *builder.CLI) {
	baseline := entity.ROISnapshot{
		ResearchTimeHours:  4.0,
		ComplianceAuditDay: 14,
		ClientReportDays:   3,
		MonthlyCost:        180000,
	}
	current := entity.ROISnapshot{
		ResearchTimeHours:  0.5,
		ComplianceAuditDay: 1,
		ClientReportDays:   0.5,
		MonthlyCost:        50000,
	}

	metrics, err := cli.CostOps.CalculateROI(baseline, current)
	if err != nil {
		log.Fatal("roi calculation failed:", err)
	}

	fmt.Println("Transformation results:")
	fmt.Printf("  Research time reduction: %.1f%%\n", metrics.TimeReductionPercent)
	fmt.Printf("  Monthly cost savings:    $%.0f\n", metrics.MonthlyCostSavings)
	fmt.Printf("  Productivity multiplier: %.1fx\n", metrics.ProductivityMultiplier)
	fmt.Printf("  Research: %.1fh -> %.1fh\n", baseline.ResearchTimeHours, current.ResearchTimeHours)
	fmt.Printf("  Compliance audits: %.0f days -> %.0f day\n", baseline.ComplianceAuditDay, current.ComplianceAuditDay)
	fmt.Printf("  Client reports: %.1f days -> %.1f days\n", baseline.ClientReportDays, current.ClientReportDays)
}
