package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"ats-go/internal/ai"
	"ats-go/internal/config"
	"ats-go/internal/constants"
	"ats-go/internal/storage"
	"ats-go/internal/storage/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// funcGenerator 用函数实现 ai.Generator，并记录调用次数
type funcGenerator struct {
	mu    sync.Mutex
	fn    func(prompt string) (string, error)
	calls int
}

func (g *funcGenerator) Generate(_ context.Context, prompt string) (string, error) {
	g.mu.Lock()
	g.calls++
	g.mu.Unlock()
	return g.fn(prompt)
}

func (g *funcGenerator) Calls() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.calls
}

// memCache 内存版 Cache
type memCache struct {
	data map[string][]byte
}

func newMemCache() *memCache { return &memCache{data: map[string][]byte{}} }

func (c *memCache) FormatKey(keyConstant string, parts ...interface{}) string {
	return "test:" + fmt.Sprintf(keyConstant, parts...)
}

func (c *memCache) GetJSON(_ context.Context, key string, dest interface{}) (bool, error) {
	b, ok := c.data[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(b, dest)
}

func (c *memCache) SetJSON(_ context.Context, key string, value interface{}, _ time.Duration) error {
	b, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.data[key] = b
	return nil
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	gdb, err := storage.NewDatabase(&config.DatabaseConfig{
		Driver:      config.DriverSQLite,
		Path:        ":memory:",
		LogLevel:    1,
		AutoMigrate: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = gdb.Close() })
	return gdb.DB()
}

func seedCandidate(t *testing.T, db *gorm.DB, email, summary string, skills ...string) models.Candidate {
	t.Helper()
	c := models.Candidate{
		ID:                     models.NewID(),
		FullName:               strings.Split(email, "@")[0],
		Email:                  email,
		ResumeSummary:          summary,
		TechnicalSkillsSummary: "skills of " + email,
	}
	require.NoError(t, db.Create(&c).Error)
	for _, name := range skills {
		sk := models.Skill{ID: models.NewID(), SkillName: name, NameKey: strings.ToLower(name)}
		var existing models.Skill
		if err := db.Where("name_key = ?", sk.NameKey).First(&existing).Error; err == nil {
			sk = existing
		} else {
			require.NoError(t, db.Create(&sk).Error)
		}
		require.NoError(t, db.Create(&models.CandidateSkill{CandidateID: c.ID, SkillID: sk.ID}).Error)
	}
	return c
}

func seedApplication(t *testing.T, db *gorm.DB, candidateID, jobID string, score float64, stage string) models.JobApplication {
	t.Helper()
	app := models.JobApplication{
		ID:          models.NewID(),
		CandidateID: candidateID,
		JobID:       jobID,
		MatchScore:  score,
		Stage:       stage,
	}
	require.NoError(t, db.Create(&app).Error)
	return app
}

func TestJobService_CreateAndGet(t *testing.T) {
	db := newTestDB(t)
	require.NoError(t, db.Create(&models.Skill{ID: models.NewID(), SkillName: "PostgreSQL", NameKey: "postgresql"}).Error)
	svc := NewJobService(db, ai.NewClient(nil), nil)
	ctx := context.Background()

	job, err := svc.Create(ctx, CreateJobRequest{
		JobTitle:       "  Platform Engineer ",
		Description:    "Run the platform",
		RequiredSkills: []string{"go", "GO", "postgresql", " "},
		InterviewStages: []StageTemplateInput{
			{StageName: "Onsite", Sequence: 2},
			{StageName: "Phone Screen", InterviewerInfo: "HR", Sequence: 1},
		},
	}, "hr-1")
	require.NoError(t, err)

	assert.Equal(t, "Platform Engineer", job.JobTitle)
	assert.Equal(t, constants.JobStatusOpen, job.Status)
	assert.Equal(t, "hr-1", job.CreatedBy)
	assert.Nil(t, job.DepartmentID)

	names := make([]string, 0, len(job.RequiredSkills))
	for _, s := range job.RequiredSkills {
		names = append(names, s.SkillName)
	}
	assert.ElementsMatch(t, []string{"Go", "PostgreSQL"}, names)

	var skillCount int64
	require.NoError(t, db.Model(&models.Skill{}).Count(&skillCount).Error)
	assert.EqualValues(t, 2, skillCount, "已有技能按小写名称复用")

	require.Len(t, job.InterviewStages, 2)
	assert.Equal(t, "Phone Screen", job.InterviewStages[0].StageName)

	stages, err := svc.StageTemplates(ctx, job.ID)
	require.NoError(t, err)
	require.Len(t, stages, 2)
	assert.Equal(t, 1, stages[0].Sequence)
	assert.Equal(t, 2, stages[1].Sequence)

	_, err = svc.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestJobService_CreateValidation(t *testing.T) {
	svc := NewJobService(newTestDB(t), ai.NewClient(nil), nil)

	_, err := svc.Create(context.Background(), CreateJobRequest{JobTitle: " "}, "u")
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.Create(context.Background(), CreateJobRequest{JobTitle: "X", Status: "Paused"}, "u")
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestJobService_ListAndStageTemplatesEmpty(t *testing.T) {
	db := newTestDB(t)
	svc := NewJobService(db, ai.NewClient(nil), nil)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := svc.Create(ctx, CreateJobRequest{JobTitle: fmt.Sprintf("Job %d", i)}, "u")
		require.NoError(t, err)
	}

	jobs, err := svc.List(ctx, 1, 0)
	require.NoError(t, err)
	assert.Len(t, jobs, 2)

	stages, err := svc.StageTemplates(ctx, jobs[0].ID)
	require.NoError(t, err)
	assert.NotNil(t, stages)
	assert.Empty(t, stages)
}

func TestJobService_ApplicationsOrderedByScore(t *testing.T) {
	db := newTestDB(t)
	svc := NewJobService(db, ai.NewClient(nil), nil)
	ctx := context.Background()

	job, err := svc.Create(ctx, CreateJobRequest{JobTitle: "QA"}, "u")
	require.NoError(t, err)
	a := seedCandidate(t, db, "a@example.com", "a")
	b := seedCandidate(t, db, "b@example.com", "b")
	c := seedCandidate(t, db, "c@example.com", "c")
	seedApplication(t, db, a.ID, job.ID, 55, constants.StageApplied)
	seedApplication(t, db, b.ID, job.ID, 92, constants.StageApplied)
	seedApplication(t, db, c.ID, job.ID, 10, constants.StageNotAFit)

	apps, err := svc.Applications(ctx, job.ID, "")
	require.NoError(t, err)
	require.Len(t, apps, 3)
	assert.Equal(t, []float64{92, 55, 10}, []float64{apps[0].MatchScore, apps[1].MatchScore, apps[2].MatchScore})

	applied, err := svc.Applications(ctx, job.ID, constants.StageApplied)
	require.NoError(t, err)
	assert.Len(t, applied, 2)

	rows, err := svc.ApplicationRows(ctx, job.ID)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "b@example.com", rows[0].CandidateEmail)

	_, err = svc.Applications(ctx, "missing", "")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestJobService_GenerateJobDescriptionCached(t *testing.T) {
	gen := &funcGenerator{fn: func(prompt string) (string, error) {
		return `{"job_description": "## Go Developer\nBuild services."}`, nil
	}}
	cache := newMemCache()
	svc := NewJobService(newTestDB(t), ai.NewClient(gen), cache)
	ctx := context.Background()
	req := GenerateJDRequest{Title: "Go Developer", Skills: []string{"Go", "SQL"}, Experience: "3 years"}

	jd, err := svc.GenerateJobDescription(ctx, req)
	require.NoError(t, err)
	assert.Contains(t, jd, "Build services.")

	again, err := svc.GenerateJobDescription(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, jd, again)
	assert.Equal(t, 1, gen.Calls(), "第二次命中缓存")
	require.Len(t, cache.data, 1)
	for k := range cache.data {
		assert.True(t, strings.HasPrefix(k, "test:job:generated_jd:"))
	}

	_, err = svc.GenerateJobDescription(ctx, GenerateJDRequest{Title: "Other"})
	require.NoError(t, err)
	assert.Equal(t, 2, gen.Calls())
}

func TestJobService_GenerateJobDescriptionUnavailable(t *testing.T) {
	svc := NewJobService(newTestDB(t), ai.NewClient(nil), nil)
	_, err := svc.GenerateJobDescription(context.Background(), GenerateJDRequest{Title: "X"})
	assert.ErrorIs(t, err, ai.ErrAIServiceUnavailable)
}

func TestSkillService(t *testing.T) {
	db := newTestDB(t)
	svc := NewSkillService(db)
	ctx := context.Background()

	created, err := svc.Create(ctx, CreateSkillRequest{SkillName: " Kubernetes ", SkillCategory: "Infra"}, "u")
	require.NoError(t, err)
	assert.Equal(t, "Kubernetes", created.SkillName)
	assert.Equal(t, "kubernetes", created.NameKey)

	_, err = svc.Create(ctx, CreateSkillRequest{SkillName: "KUBERNETES"}, "u")
	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.Contains(t, err.Error(), "already exists")

	_, err = svc.Create(ctx, CreateSkillRequest{SkillName: "Kafka"}, "u")
	require.NoError(t, err)
	_, err = svc.Create(ctx, CreateSkillRequest{SkillName: "Go"}, "u")
	require.NoError(t, err)

	found, err := svc.Search(ctx, "K")
	require.NoError(t, err)
	require.Len(t, found, 2)
	assert.Equal(t, "Kafka", found[0].SkillName)
	assert.Equal(t, "Kubernetes", found[1].SkillName)

	all, err := svc.Search(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestApplicationService_Profile(t *testing.T) {
	db := newTestDB(t)
	jobs := NewJobService(db, ai.NewClient(nil), nil)
	ctx := context.Background()

	job, err := jobs.Create(ctx, CreateJobRequest{JobTitle: "Backend", RequiredSkills: []string{"Go", "Kafka"}}, "u")
	require.NoError(t, err)
	cand := seedCandidate(t, db, "p@example.com", "summary", "go", "Docker")
	app := seedApplication(t, db, cand.ID, job.ID, 70, constants.StageApplied)

	svc := NewApplicationService(db, nil, ai.NewClient(nil), nil, "")
	profile, err := svc.Profile(ctx, app.ID)
	require.NoError(t, err)

	assert.Equal(t, app.ID, profile.Application.ID)
	assert.Equal(t, cand.Email, profile.Candidate.Email)
	assert.Equal(t, job.ID, profile.Job.ID)
	assert.Len(t, profile.AllCandidateSkills, 2)
	require.Len(t, profile.MatchedSkills, 1)
	assert.Equal(t, "Go", profile.MatchedSkills[0].SkillName)

	_, err = svc.Profile(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestApplicationService_Insights(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	job := models.Job{ID: models.NewID(), JobTitle: "ML", Description: "Train models", Status: constants.JobStatusOpen}
	require.NoError(t, db.Create(&job).Error)
	cand := seedCandidate(t, db, "i@example.com", "ML researcher")
	app := seedApplication(t, db, cand.ID, job.ID, 80, constants.StageApplied)

	var seenPrompt string
	gen := &funcGenerator{fn: func(prompt string) (string, error) {
		seenPrompt = prompt
		return "```json\n" + `{"summary":"Strong","strengths":["math"],"weaknesses":["ops"],"interview_questions":["Why?"]}` + "\n```", nil
	}}
	cache := newMemCache()
	svc := NewApplicationService(db, nil, ai.NewClient(gen), cache, "")

	insights, err := svc.Insights(ctx, app.ID)
	require.NoError(t, err)
	assert.Equal(t, "Strong", insights.Summary)
	assert.Equal(t, []string{"Why?"}, insights.InterviewQuestions)
	assert.Contains(t, seenPrompt, cand.TechnicalSkillsSummary)

	_, err = svc.Insights(ctx, app.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, gen.Calls())

	empty := seedCandidate(t, db, "e@example.com", "")
	emptyApp := seedApplication(t, db, empty.ID, job.ID, 80, constants.StageApplied)
	_, err = svc.Insights(ctx, emptyApp.ID)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestApplicationService_UpdateStageAndHistory(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	job := models.Job{ID: models.NewID(), JobTitle: "SRE", Status: constants.JobStatusOpen}
	require.NoError(t, db.Create(&job).Error)
	cand := seedCandidate(t, db, "s@example.com", "sre")
	app := seedApplication(t, db, cand.ID, job.ID, 65, constants.StageApplied)

	svc := NewApplicationService(db, nil, ai.NewClient(nil), nil, "hr.events")

	updated, err := svc.UpdateStage(ctx, app.ID, UpdateStageRequest{Stage: constants.StageShortlisted, Notes: "strong"}, "hr-9")
	require.NoError(t, err)
	assert.Equal(t, constants.StageShortlisted, updated.Stage)
	assert.Equal(t, "hr-9", updated.UpdatedBy)
	require.NotNil(t, updated.UpdatedAt)

	_, err = svc.UpdateStage(ctx, app.ID, UpdateStageRequest{Stage: constants.StageHired}, "hr-9")
	require.NoError(t, err)

	history, err := svc.History(ctx, app.ID)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, constants.StageShortlisted, history[0].Status)
	assert.Equal(t, "strong", history[0].Notes)
	assert.Equal(t, constants.StageHired, history[1].Status)

	var events []models.OutboxMessage
	require.NoError(t, db.Order("id").Find(&events).Error)
	require.Len(t, events, 2)
	assert.Equal(t, constants.EventApplicationStageChanged, events[0].EventType)
	assert.Equal(t, "hr.events", events[0].TargetExchange)
	var msg storage.ApplicationStageChangedMessage
	require.NoError(t, json.Unmarshal([]byte(events[1].Payload), &msg))
	assert.Equal(t, constants.StageShortlisted, msg.PreviousStage)
	assert.Equal(t, constants.StageHired, msg.Stage)

	_, err = svc.UpdateStage(ctx, "missing", UpdateStageRequest{Stage: "X"}, "hr")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = svc.UpdateStage(ctx, app.ID, UpdateStageRequest{}, "hr")
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestApplicationService_OpenResume(t *testing.T) {
	db := newTestDB(t)
	files, err := storage.NewLocalFileStore(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	path, err := files.Save(ctx, storage.GenerateStoredName("My CV.pdf"), []byte("%PDF-1.4"))
	require.NoError(t, err)
	cand := seedCandidate(t, db, "d@example.com", "x")
	require.NoError(t, db.Model(&cand).Update("resume_file_path", path).Error)

	svc := NewApplicationService(db, files, ai.NewClient(nil), nil, "")
	rc, name, err := svc.OpenResume(ctx, cand.ID)
	require.NoError(t, err)
	defer rc.Close()
	body, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.4", string(body))
	assert.Equal(t, "MyCV.pdf", name)

	noFile := seedCandidate(t, db, "n@example.com", "x")
	_, _, err = svc.OpenResume(ctx, noFile.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	_, _, err = svc.OpenResume(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRediscoveryService(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	job := models.Job{ID: models.NewID(), JobTitle: "Data Scientist", Description: "Stats and Python", Status: constants.JobStatusOpen}
	require.NoError(t, db.Create(&job).Error)

	high := seedCandidate(t, db, "high@example.com", "summary-high")
	seedCandidate(t, db, "mid@example.com", "summary-mid")
	seedCandidate(t, db, "edge@example.com", "summary-edge")
	top := seedCandidate(t, db, "top@example.com", "summary-top")
	seedCandidate(t, db, "blank@example.com", "   ")
	seedCandidate(t, db, "broken@example.com", "summary-broken")
	seedCandidate(t, db, "down@example.com", "summary-down")
	applied := seedCandidate(t, db, "applied@example.com", "summary-applied")
	seedApplication(t, db, applied.ID, job.ID, 90, constants.StageApplied)

	scores := map[string]string{
		"summary-high":    `{"match_score": 75, "match_summary": "good"}`,
		"summary-mid":     `{"match_score": 40, "match_summary": "meh"}`,
		"summary-edge":    `{"match_score": 60, "match_summary": "borderline"}`,
		"summary-top":     `{"match_score": 95}`,
		"summary-broken":  `not json at all`,
		"summary-applied": `{"match_score": 99, "match_summary": "should not be asked"}`,
	}
	gen := &funcGenerator{fn: func(prompt string) (string, error) {
		if strings.Contains(prompt, "summary-down") {
			return "", errors.New("upstream 500")
		}
		for k, v := range scores {
			if strings.Contains(prompt, k) {
				return v, nil
			}
		}
		return "", errors.New("unexpected prompt")
	}}

	svc := NewRediscoveryService(db, ai.NewClient(gen))
	res, err := svc.Rediscover(ctx, job.ID)
	require.NoError(t, err)

	assert.Equal(t, "Data Scientist", res.JobTitle)
	require.Len(t, res.MatchingCandidates, 2)
	assert.Equal(t, top.ID, res.MatchingCandidates[0].CandidateID)
	assert.Equal(t, "No summary provided.", res.MatchingCandidates[0].MatchSummary)
	assert.Equal(t, high.ID, res.MatchingCandidates[1].CandidateID)
	assert.Equal(t, 75.0, res.MatchingCandidates[1].MatchScore)
	assert.Equal(t, 6, gen.Calls(), "空摘要与已申请的候选人不调用AI")

	_, err = svc.Rediscover(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestReportService(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	for i, status := range []string{constants.JobStatusOpen, constants.JobStatusOpen, constants.JobStatusClosed} {
		job := models.Job{ID: models.NewID(), JobTitle: fmt.Sprintf("J%d", i), Status: status}
		require.NoError(t, db.Create(&job).Error)
		if i == 0 {
			c := seedCandidate(t, db, "r@example.com", "x")
			seedApplication(t, db, c.ID, job.ID, 10, constants.StageNotAFit)
		}
	}

	svc := NewReportService(db)
	stats, err := svc.Summary(ctx)
	require.NoError(t, err)
	assert.Equal(t, SummaryStats{TotalJobs: 3, OpenJobs: 2, ClosedJobs: 1, TotalApplications: 1}, *stats)

	byStatus, err := svc.JobsByStatus(ctx)
	require.NoError(t, err)
	assert.Equal(t, []JobStatusCount{{Status: "Closed", Count: 1}, {Status: "Open", Count: 2}}, byStatus)
}

func TestSkillService_SearchMatchesWildcardsLiterally(t *testing.T) {
	db := newTestDB(t)
	svc := NewSkillService(db)
	ctx := context.Background()

	for _, name := range []string{"C_Sharp", "CSS", "100%Uptime", "Go"} {
		_, err := svc.Create(ctx, CreateSkillRequest{SkillName: name}, "u")
		require.NoError(t, err)
	}

	found, err := svc.Search(ctx, "_")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "C_Sharp", found[0].SkillName)

	found, err = svc.Search(ctx, "%")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "100%Uptime", found[0].SkillName)

	found, err = svc.Search(ctx, "c_s")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "C_Sharp", found[0].SkillName)

	found, err = svc.Search(ctx, "!")
	require.NoError(t, err)
	assert.Empty(t, found)
}

func TestOrgService(t *testing.T) {
	db := newTestDB(t)
	svc := NewOrgService(db)
	ctx := context.Background()

	p, err := svc.CreatePortfolio(ctx, CreatePortfolioRequest{PortfolioName: "Engineering"}, "admin")
	require.NoError(t, err)

	d, err := svc.CreateDepartment(ctx, CreateDepartmentRequest{DepartmentName: "Platform", PortfolioID: p.ID}, "admin")
	require.NoError(t, err)
	assert.Equal(t, p.ID, d.PortfolioID)

	_, err = svc.CreateDepartment(ctx, CreateDepartmentRequest{DepartmentName: "Ghost", PortfolioID: "nope"}, "admin")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = svc.CreatePortfolio(ctx, CreatePortfolioRequest{}, "admin")
	assert.ErrorIs(t, err, ErrInvalidInput)

	ps, err := svc.ListPortfolios(ctx, 0, 0)
	require.NoError(t, err)
	assert.Len(t, ps, 1)
	ds, err := svc.ListDepartments(ctx, 0, 0)
	require.NoError(t, err)
	assert.Len(t, ds, 1)

	detail, err := svc.GetPortfolio(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, detail.Departments, 1)
	assert.Equal(t, "Platform", detail.Departments[0].DepartmentName)

	desc := "core systems"
	updated, err := svc.UpdatePortfolio(ctx, p.ID, UpdatePortfolioRequest{Description: &desc}, "hr")
	require.NoError(t, err)
	assert.Equal(t, "Engineering", updated.PortfolioName)
	assert.Equal(t, "core systems", updated.Description)
	assert.Equal(t, "hr", updated.UpdatedBy)

	blank := "  "
	_, err = svc.UpdatePortfolio(ctx, p.ID, UpdatePortfolioRequest{PortfolioName: &blank}, "hr")
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, err = svc.GetPortfolio(ctx, "nope")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = svc.UpdatePortfolio(ctx, "nope", UpdatePortfolioRequest{}, "hr")
	assert.ErrorIs(t, err, ErrNotFound)

	reloaded, err := svc.GetPortfolio(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "core systems", reloaded.Description)
	require.NotNil(t, reloaded.UpdatedAt)
}

func TestSettingsService(t *testing.T) {
	db := newTestDB(t)
	svc := NewSettingsService(db)
	ctx := context.Background()

	defaults := DefaultAISettings(config.AIConfig{Provider: "gemini", Model: "gemini-2.0-flash", Temperature: 0.2, QPM: 60})
	require.NoError(t, svc.EnsureDefaults(ctx, defaults))

	got, err := svc.Update(ctx, "model", " gemini-2.5-pro ")
	require.NoError(t, err)
	assert.Equal(t, "gemini-2.5-pro", got.SettingValue)

	// 再次写入默认值不覆盖已修改的参数
	require.NoError(t, svc.EnsureDefaults(ctx, DefaultAISettings(config.AIConfig{Model: "other"})))

	all, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 4)
	values := map[string]string{}
	for _, s := range all {
		values[s.SettingName] = s.SettingValue
	}
	assert.Equal(t, "gemini-2.5-pro", values["model"])
	assert.Equal(t, "0.2", values["temperature"])
	assert.Equal(t, "60", values["qpm"])

	_, err = svc.Update(ctx, "missing", "x")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = svc.Update(ctx, "model", "")
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestUserService(t *testing.T) {
	db := newTestDB(t)
	svc := NewUserService(db)
	ctx := context.Background()

	user, token, err := svc.Create(ctx, "hr@example.com", "HR Person", constants.RoleHR)
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Equal(t, HashToken(token), user.APITokenHash)
	assert.NotEqual(t, token, user.APITokenHash)

	got, err := svc.Authenticate(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)

	_, err = svc.Authenticate(ctx, "wrong")
	assert.ErrorIs(t, err, ErrUnauthorized)
	_, err = svc.Authenticate(ctx, "")
	assert.ErrorIs(t, err, ErrUnauthorized)

	_, _, err = svc.Create(ctx, "hr@example.com", "Dup", constants.RoleHR)
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, _, err = svc.Create(ctx, "x@example.com", "X", "Overlord")
	assert.ErrorIs(t, err, ErrInvalidInput)

	all, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "hr@example.com", all[0].Email)

	require.NoError(t, db.Model(&models.User{}).Where("id = ?", user.ID).Update("is_active", false).Error)
	_, err = svc.Authenticate(ctx, token)
	assert.ErrorIs(t, err, ErrInactiveUser)
}
