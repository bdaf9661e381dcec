package sim

import (
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"adx/internal/demand"
	"adx/internal/metrics"
)

// Config shapes a simulation run. Zero fields fall back to defaults.
type Config struct {
	Days                int     `json:"days"`
	Agents              int     `json:"agents"`
	Users               int     `json:"users"`
	QueriesPerUser      int     `json:"queries_per_user"`
	CampaignDurationMin int     `json:"campaign_duration_min"`
	CampaignDurationMax int     `json:"campaign_duration_max"`
	ReachPerDay         int64   `json:"reach_per_day"`
	ReserveCPM          float64 `json:"reserve_cpm"`
	InitialCPM          float64 `json:"initial_cpm"`
	EstimatorDecay      float64 `json:"estimator_decay"`
	QualityLearningRate float64 `json:"quality_learning_rate"`
	Seed                int64   `json:"seed"`
}

func (c Config) withDefaults() Config {
	if c.Days <= 0 {
		c.Days = 30
	}
	if c.Agents <= 0 {
		c.Agents = 4
	}
	if c.Users <= 0 {
		c.Users = 500
	}
	if c.QueriesPerUser <= 0 {
		c.QueriesPerUser = 3
	}
	if c.CampaignDurationMin <= 0 {
		c.CampaignDurationMin = 3
	}
	if c.CampaignDurationMax < c.CampaignDurationMin {
		c.CampaignDurationMax = c.CampaignDurationMin + 4
	}
	if c.ReachPerDay <= 0 {
		c.ReachPerDay = 400
	}
	if c.ReserveCPM <= 0 {
		c.ReserveCPM = 50
	}
	if c.InitialCPM <= 0 {
		c.InitialCPM = 300
	}
	if c.EstimatorDecay <= 0 {
		c.EstimatorDecay = defaultEstimatorDecay
	}
	if c.QualityLearningRate <= 0 {
		c.QualityLearningRate = 0.4
	}
	if c.Seed == 0 {
		c.Seed = time.Now().UnixNano()
	}
	return c
}

// ErrFinished is returned when stepping a completed run.
var ErrFinished = errors.New("sim: run already finished")

// Simulation is one self-contained run of the exchange: a population,
// a publisher catalog, a set of bidding agents, and the campaign
// registry, advanced by a strictly sequential day clock.
type Simulation struct {
	mu sync.Mutex

	ID  string
	cfg Config

	day      int
	finished bool

	rng      *rand.Rand
	users    []User
	catalog  []Publisher
	registry *demand.Registry
	quality  *demand.SmoothingQualityManager
	bank     *Bank
	exchange *Exchange

	agents      []*AdNetwork
	agentByName map[string]*AdNetwork

	// Opportunity announced today; its allocation auction runs at the
	// next day boundary.
	pending *demand.Campaign

	nextCampaignID int
	days           []DayReport
	final          *FinalReport
}

// qualityRecorder mirrors quality updates into metrics.
type qualityRecorder struct {
	inner demand.QualityManager
}

func (q qualityRecorder) Score(adnet string) float64 { return q.inner.Score(adnet) }

func (q qualityRecorder) Update(adnet string, ratio float64) {
	metrics.EffectiveReach.Observe(ratio)
	q.inner.Update(adnet, ratio)
}

// revenueRecorder mirrors campaign-end broadcasts into metrics.
type revenueRecorder struct {
	bank *Bank
}

func (r revenueRecorder) CampaignEnded(campaignID int, adnet string, revenue float64) {
	metrics.CampaignsEnded.Inc()
	r.bank.CampaignEnded(campaignID, adnet, revenue)
}

// NewSimulation sets up day 0: the population and catalog are drawn,
// each agent receives an initial campaign starting on day 1, and the
// first campaign opportunity is announced.
func NewSimulation(id string, cfg Config) *Simulation {
	cfg = cfg.withDefaults()
	rng := rand.New(rand.NewSource(cfg.Seed))

	s := &Simulation{
		ID:          id,
		cfg:         cfg,
		rng:         rng,
		users:       NewPopulation(cfg.Users, rng),
		catalog:     DefaultCatalog(),
		registry:    demand.NewRegistry(),
		quality:     demand.NewQualityManager(cfg.QualityLearningRate),
		bank:        NewBank(),
		agentByName: make(map[string]*AdNetwork, cfg.Agents),
	}
	s.exchange = NewExchange(cfg.ReserveCPM, s.bank)

	for i := 0; i < cfg.Agents; i++ {
		agent := NewAdNetwork(fmt.Sprintf("adnet-%d", i+1), rng.Int63(), cfg.EstimatorDecay, cfg.InitialCPM)
		s.agents = append(s.agents, agent)
		s.agentByName[agent.Name] = agent
	}

	// Day 0: one pre-allocated campaign per agent, starting on day 1.
	for _, agent := range s.agents {
		c := s.newCampaign(1, s.drawDuration())
		c.Allocate(agent.Name)
		s.registry.Add(c)
		agent.Won(c)
	}
	s.announceOpportunity()

	logrus.WithFields(logrus.Fields{
		"run":    id,
		"seed":   cfg.Seed,
		"agents": cfg.Agents,
		"users":  cfg.Users,
		"days":   cfg.Days,
	}).Info("simulation created")
	return s
}

func (s *Simulation) drawDuration() int {
	span := s.cfg.CampaignDurationMax - s.cfg.CampaignDurationMin + 1
	return s.cfg.CampaignDurationMin + s.rng.Intn(span)
}

// newCampaign builds a campaign whose window opens on startDay.
func (s *Simulation) newCampaign(startDay, duration int) *demand.Campaign {
	s.nextCampaignID++
	contract := demand.Contract{
		ReachImps:      int64(duration) * s.cfg.ReachPerDay,
		DayStart:       startDay,
		DayEnd:         startDay + duration - 1,
		TargetSegments: RandomTargetSegments(s.rng),
		VideoCoef:      1 + s.rng.Float64(),
		MobileCoef:     1 + s.rng.Float64(),
	}
	c, err := demand.NewCampaign(s.nextCampaignID, contract,
		qualityRecorder{inner: s.quality}, revenueRecorder{bank: s.bank})
	if err != nil {
		// Contracts are generated in-range; a failure here is a bug.
		panic(err)
	}
	return c
}

// announceOpportunity opens a new campaign opportunity starting two
// days out and collects the agents' sealed budget bids.
func (s *Simulation) announceOpportunity() {
	startDay := s.day + 2
	if startDay > s.cfg.Days {
		return
	}
	duration := s.drawDuration()
	if startDay+duration-1 > s.cfg.Days {
		duration = s.cfg.Days - startDay + 1
	}
	c := s.newCampaign(startDay, duration)
	s.registry.Add(c)
	for _, agent := range s.agents {
		c.AddAdvertiserBid(agent.Name, agent.BidForCampaign(c))
	}
	s.pending = c
}

// StepDay advances the run one simulated day: queries are delivered
// through the exchange, agents stage tomorrow's limits, the pending
// opportunity's allocation auction settles, every campaign rolls over,
// and a fresh opportunity is announced.
func (s *Simulation) StepDay() (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.finished {
		return s.day, ErrFinished
	}

	if s.day >= 1 {
		s.deliverQueries()
	}
	for _, agent := range s.agents {
		for _, msg := range agent.TomorrowLimits() {
			s.registry.ApplyLimit(msg)
		}
	}
	s.resolvePendingAuction()
	s.days = append(s.days, s.dayReport())

	s.day++
	s.registry.AdvanceAll(s.day)
	metrics.SimulationDays.Inc()

	if s.day > s.cfg.Days {
		s.finish()
		return s.day, nil
	}
	s.announceOpportunity()
	return s.day, nil
}

func (s *Simulation) deliverQueries() {
	for i := range s.users {
		for q := 0; q < s.cfg.QueriesPerUser; q++ {
			query := NewQuery(s.users[i], s.catalog, s.rng)
			s.exchange.RunQueryAuction(query, s.agents)
		}
	}
}

func (s *Simulation) resolvePendingAuction() {
	if s.pending == nil {
		return
	}
	winner, ok := s.pending.RunAuction()
	metrics.AuctionsRun.Inc()
	if ok {
		s.agentByName[winner].Won(s.pending)
	}
	s.pending = nil
}

func (s *Simulation) dayReport() DayReport {
	report := DayReport{
		Day:      s.day,
		Quality:  s.quality.Snapshot(),
		Balances: s.bank.Snapshot(),
	}
	for _, c := range s.registry.All() {
		report.Campaigns = append(report.Campaigns, snapshotCampaign(c))
	}
	return report
}

func (s *Simulation) finish() {
	s.finished = true
	final := &FinalReport{
		RunID:      s.ID,
		Seed:       s.cfg.Seed,
		Days:       s.cfg.Days,
		FinishedAt: time.Now().UTC(),
	}
	for _, agent := range s.agents {
		final.Agents = append(final.Agents, AgentResult{
			Name:         agent.Name,
			Balance:      s.bank.Balance(agent.Name),
			Quality:      s.quality.Score(agent.Name),
			CampaignsWon: len(agent.Campaigns()),
		})
	}
	for _, c := range s.registry.All() {
		final.Campaigns = append(final.Campaigns, snapshotCampaign(c))
	}
	s.final = final
	logrus.WithFields(logrus.Fields{
		"run":       s.ID,
		"days":      s.cfg.Days,
		"campaigns": s.registry.Len(),
	}).Info("simulation finished")
}

// RunToCompletion steps until the configured horizon is reached.
func (s *Simulation) RunToCompletion() (*FinalReport, error) {
	for {
		if _, err := s.StepDay(); err != nil {
			if errors.Is(err, ErrFinished) {
				break
			}
			return nil, err
		}
		if s.Finished() {
			break
		}
	}
	final, ok := s.Final()
	if !ok {
		return nil, errors.New("sim: run finished without a final report")
	}
	return final, nil
}

// Day returns the current simulated day.
func (s *Simulation) Day() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.day
}

// Finished reports whether the run has reached its horizon.
func (s *Simulation) Finished() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.finished
}

// Config returns the normalized run configuration.
func (s *Simulation) Config() Config {
	return s.cfg
}

// Campaign looks up a campaign by id.
func (s *Simulation) Campaign(id int) (*demand.Campaign, bool) {
	return s.registry.Get(id)
}

// CampaignCount returns the number of campaigns created so far.
func (s *Simulation) CampaignCount() int {
	return s.registry.Len()
}

// DayReports returns the per-day reports captured so far.
func (s *Simulation) DayReports() []DayReport {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]DayReport, len(s.days))
	copy(out, s.days)
	return out
}

// Final returns the final report once the run has finished.
func (s *Simulation) Final() (*FinalReport, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.final, s.final != nil
}
