package grifts

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"
	"time"

	"github.com/gobuffalo/grift/grift"
	"github.com/pkg/errors"

	"github.com/silinternational/claimflow/api"
	"github.com/silinternational/claimflow/domain"
	"github.com/silinternational/claimflow/job"
	"github.com/silinternational/claimflow/listeners"
	"github.com/silinternational/claimflow/log"
	"github.com/silinternational/claimflow/models"
	"github.com/silinternational/claimflow/workflow"
)

var _ = grift.Namespace("claims", func() {
	grift.Desc("query", "Queries claims. Usage: claims:query [file.json] [search=x filter=status:Y sort=z page=n limit=n format=json]")
	_ = grift.Add("query", func(c *grift.Context) error {
		repo, params, err := repositoryFromArgs(c.Args)
		if err != nil {
			return err
		}

		svc := workflow.NewService(repo, workflow.WithEmitter(nil))
		result, err := svc.Query(context.Background(), api.NewClaimQuery(params))
		if err != nil {
			return errors.Wrap(err, "query failed")
		}

		if params.Get("format") == "json" {
			out, err := json.MarshalIndent(models.ConvertQueryResult(result), "", "  ")
			if err != nil {
				return errors.Wrap(err, "failed to encode results")
			}
			fmt.Println(string(out))
			return nil
		}

		fmt.Printf("page %d (size %d) of %d matching claims\n", result.PageNumber, result.PageSize, result.TotalCount)
		for _, cl := range result.Page {
			printClaim(cl)
		}
		return nil
	})

	grift.Desc("stats", "Counts claims by status. Usage: claims:stats [file.json]")
	_ = grift.Add("stats", func(c *grift.Context) error {
		repo, _, err := repositoryFromArgs(c.Args)
		if err != nil {
			return err
		}

		job.Init(workflow.NewService(repo, workflow.WithEmitter(nil)))
		if err := job.Run(context.Background(), job.RefreshStats, nil); err != nil {
			return errors.Wrap(err, "failed to count claims")
		}

		stats := job.Cache.Get()
		statuses := make([]string, 0, len(stats.Counts))
		for s := range stats.Counts {
			statuses = append(statuses, string(s))
		}
		sort.Strings(statuses)

		for _, s := range statuses {
			fmt.Printf("%-24s %d\n", s, stats.Counts[api.ClaimStatus(s)])
		}
		fmt.Printf("%-24s %d\n", "TOTAL", stats.Total)
		return nil
	})

	grift.Desc("watch", "Sends notifications for workflow events and logs claim counts until interrupted")
	_ = grift.Add("watch", func(c *grift.Context) error {
		repo, _, err := repositoryFromArgs(c.Args)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		svc := workflow.NewService(repo)
		listeners.RegisterListeners(svc)
		job.Init(svc)

		p := job.NewPoller(time.Duration(domain.Env.StatsPollSeconds)*time.Second, job.RefreshStats, nil)
		p.Start(ctx)

		<-ctx.Done()
		p.Stop()

		stats := job.Cache.Get()
		log.WithFields(map[string]any{
			"total":        stats.Total,
			"refreshed_at": stats.RefreshedAt,
		}).Info("stopped watching claims")
		return nil
	})

	grift.Desc("demo", "Runs the partial fulfillment, emergency rejection and return for review scenarios in memory")
	_ = grift.Add("demo", func(c *grift.Context) error {
		ctx := context.Background()
		svc := workflow.NewService(models.NewMemoryStore(), workflow.WithEmitter(nil), workflow.WithAutoForward(false))

		for _, s := range []struct {
			name string
			run  func(context.Context, *workflow.Service) error
		}{
			{"partial fulfillment", demoPartialFulfillment},
			{"emergency rejection", demoEmergencyRejection},
			{"return for review", demoReturnForReview},
		} {
			fmt.Printf("== %s\n", s.name)
			if err := s.run(ctx, svc); err != nil {
				return errors.Wrapf(err, "scenario %q failed", s.name)
			}
		}
		return nil
	})
})

// repositoryFromArgs loads a JSON file of claims into memory when the first argument names one, or else
// connects to the database of the current environment. The remaining key=value arguments are returned as
// query parameters.
func repositoryFromArgs(args []string) (models.Repository, url.Values, error) {
	params := url.Values{}
	var file string
	for _, a := range args {
		if k, v, ok := strings.Cut(a, "="); ok {
			params.Set(k, v)
			continue
		}
		file = a
	}

	if file == "" {
		db, err := models.Connect(domain.Env.GoEnv)
		if err != nil {
			return nil, nil, errors.Wrap(err, "failed to connect to the database")
		}
		return models.NewPopStore(db), params, nil
	}

	raw, err := os.ReadFile(file)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "failed to read %s", file)
	}

	var wire api.Claims
	if err := json.Unmarshal(raw, &wire); err != nil {
		return nil, nil, errors.Wrapf(err, "failed to parse %s", file)
	}

	claims := make(models.Claims, len(wire))
	for i, w := range wire {
		if claims[i], err = models.ConvertAPIClaim(w); err != nil {
			return nil, nil, errors.Wrapf(err, "invalid claim %s in %s", w.ID, file)
		}
	}

	store := models.NewMemoryStore()
	store.Load(claims)
	return store, params, nil
}

func printClaim(c models.Claim) {
	fmt.Printf("%s  %-18s %-22s %-20s %10s  %s\n", c.ID, c.Kind, c.Status, c.ClientName,
		api.Currency(c.Amount), c.SubmittedAt.Format("2006-01-02 15:04"))
}

func demoPartialFulfillment(ctx context.Context, svc *workflow.Service) error {
	input := models.ClaimInputFixture(api.ClaimKindHealthcare, api.ProviderRolePharmacist)
	input.DispensedItemIDs = []string{"item-0", "item-1"}

	res, err := svc.SubmitClaim(ctx, api.ProviderRolePharmacist, input)
	if err != nil {
		return err
	}

	fmt.Printf("dispensed %d of %d items, amount %s\n", res.Claim.FulfilledItemCount,
		res.Claim.OriginalItemCount, api.Currency(res.Claim.Amount))
	printClaim(res.Claim)
	return nil
}

func demoEmergencyRejection(ctx context.Context, svc *workflow.Service) error {
	res, err := svc.SubmitClaim(ctx, api.ProviderRoleDoctor,
		models.ClaimInputFixture(api.ClaimKindEmergency, api.ProviderRoleDoctor))
	if err != nil {
		return err
	}

	if _, err := svc.Reject(ctx, res.Claim.ID, api.ActorRoleMedicalAdmin, ""); err != nil {
		fmt.Printf("rejection without a reason refused: %s\n", err)
	} else {
		return errors.New("rejection without a reason was accepted")
	}

	res, err = svc.Reject(ctx, res.Claim.ID, api.ActorRoleMedicalAdmin, "insufficient evidence")
	if err != nil {
		return err
	}
	fmt.Printf("rejected: %s\n", res.Claim.RejectionReason.String)
	printClaim(res.Claim)
	return nil
}

func demoReturnForReview(ctx context.Context, svc *workflow.Service) error {
	res, err := svc.SubmitClaim(ctx, api.ProviderRoleDoctor,
		models.ClaimInputFixture(api.ClaimKindHealthcare, api.ProviderRoleDoctor))
	if err != nil {
		return err
	}
	id := res.Claim.ID

	steps := []struct {
		name string
		fn   func() (workflow.Result, error)
	}{
		{"medical approval", func() (workflow.Result, error) { return svc.Approve(ctx, id, api.ActorRoleMedicalAdmin) }},
		{"forward", func() (workflow.Result, error) {
			return svc.ForwardToCoordination(ctx, id, api.ActorRoleMedicalAdmin)
		}},
		{"return", func() (workflow.Result, error) {
			return svc.ReturnForReview(ctx, id, api.ActorRoleCoordinationAdmin, "missing invoice")
		}},
		{"re-approval", func() (workflow.Result, error) { return svc.ReApprove(ctx, id, api.ActorRoleMedicalAdmin) }},
	}

	for _, s := range steps {
		res, err = s.fn()
		if err != nil {
			return errors.Wrap(err, s.name)
		}
		fmt.Printf("after %s: %s\n", s.name, res.Claim.Status)
	}

	printClaim(res.Claim)
	return nil
}
