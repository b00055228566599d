package grpc

import (
	"context"

	"github.com/dmitrijs2005/satellite/internal/api"
	"github.com/dmitrijs2005/satellite/internal/server/models"
	"github.com/dmitrijs2005/satellite/internal/server/services"
)

func (s *GRPCServer) Ping(ctx context.Context, req *api.Empty) (*api.PingResponse, error) {
	return &api.PingResponse{Status: "OK"}, nil
}

func (s *GRPCServer) SetDoc(ctx context.Context, req *api.SetDocRequest) (*api.DocResponse, error) {
	c, err := s.svc.Docs.Set(ctx, principalFrom(ctx), req.Collection, req.Key, req.Doc)
	if err != nil {
		return nil, err
	}
	return &api.DocResponse{Doc: c.After}, nil
}

func (s *GRPCServer) GetDoc(ctx context.Context, req *api.DocRequest) (*api.DocResponse, error) {
	d, err := s.svc.Docs.Get(ctx, principalFrom(ctx), req.Collection, req.Key)
	if err != nil {
		return nil, err
	}
	return &api.DocResponse{Doc: d}, nil
}

func (s *GRPCServer) DelDoc(ctx context.Context, req *api.DelDocRequest) (*api.DocResponse, error) {
	d, err := s.svc.Docs.Delete(ctx, principalFrom(ctx), req.Collection, req.Key, req.Doc)
	if err != nil {
		return nil, err
	}
	return &api.DocResponse{Doc: d}, nil
}

func (s *GRPCServer) ListDocs(ctx context.Context, req *api.ListRequest) (*api.ListDocsResponse, error) {
	res, err := s.svc.Docs.List(ctx, principalFrom(ctx), req.Collection, req.Params)
	if err != nil {
		return nil, err
	}
	return &api.ListDocsResponse{Results: res}, nil
}

func (s *GRPCServer) CountDocs(ctx context.Context, req *api.ListRequest) (*api.CountResponse, error) {
	n, err := s.svc.Docs.Count(ctx, principalFrom(ctx), req.Collection, req.Params)
	if err != nil {
		return nil, err
	}
	return &api.CountResponse{Count: n}, nil
}

func (s *GRPCServer) GetManyDocs(ctx context.Context, req *api.GetManyDocsRequest) (*api.DocsResponse, error) {
	refs := make([]services.DocRef, len(req.Docs))
	for i, d := range req.Docs {
		refs[i] = services.DocRef{Collection: d.Collection, Key: d.Key}
	}
	docs, err := s.svc.Docs.GetMany(ctx, principalFrom(ctx), refs)
	if err != nil {
		return nil, err
	}
	return &api.DocsResponse{Docs: docs}, nil
}

func (s *GRPCServer) SetManyDocs(ctx context.Context, req *api.SetManyDocsRequest) (*api.DocsResponse, error) {
	items := make([]services.SetDocItem, len(req.Docs))
	for i, d := range req.Docs {
		items[i] = services.SetDocItem{Collection: d.Collection, Key: d.Key, Doc: d.Doc}
	}
	out, err := s.svc.Docs.SetMany(ctx, principalFrom(ctx), items)
	if err != nil {
		return nil, err
	}
	docs := make([]*models.Doc, len(out))
	for i, c := range out {
		docs[i] = c.After
	}
	return &api.DocsResponse{Docs: docs}, nil
}

func (s *GRPCServer) DelManyDocs(ctx context.Context, req *api.DelManyDocsRequest) (*api.Empty, error) {
	items := make([]services.DelDocItem, len(req.Docs))
	for i, d := range req.Docs {
		items[i] = services.DelDocItem{Collection: d.Collection, Key: d.Key, Doc: d.Doc}
	}
	if err := s.svc.Docs.DeleteMany(ctx, principalFrom(ctx), items); err != nil {
		return nil, err
	}
	return &api.Empty{}, nil
}

func (s *GRPCServer) DelDocs(ctx context.Context, req *api.CollectionRequest) (*api.CountResponse, error) {
	n, err := s.svc.Docs.DeleteAll(ctx, principalFrom(ctx), req.Collection)
	if err != nil {
		return nil, err
	}
	return &api.CountResponse{Count: n}, nil
}

func (s *GRPCServer) GetRule(ctx context.Context, req *api.GetRuleRequest) (*api.RuleResponse, error) {
	r, err := s.svc.Rules.GetRule(ctx, req.Kind, req.Collection)
	if err != nil {
		return nil, err
	}
	return &api.RuleResponse{Rule: &r}, nil
}

func (s *GRPCServer) ListRules(ctx context.Context, req *api.ListRulesRequest) (*api.RulesResponse, error) {
	rules, err := s.svc.Rules.ListRules(ctx, principalFrom(ctx), req.Kind)
	if err != nil {
		return nil, err
	}
	return &api.RulesResponse{Rules: rules}, nil
}

func (s *GRPCServer) SetRule(ctx context.Context, req *api.SetRuleRequest) (*api.RuleResponse, error) {
	r, err := s.svc.Rules.SetRule(ctx, principalFrom(ctx), req.Kind, req.Collection, req.Rule)
	if err != nil {
		return nil, err
	}
	return &api.RuleResponse{Rule: r}, nil
}

func (s *GRPCServer) DelRule(ctx context.Context, req *api.DelRuleRequest) (*api.Empty, error) {
	if err := s.svc.Rules.DelRule(ctx, principalFrom(ctx), req.Kind, req.Collection, req.Version); err != nil {
		return nil, err
	}
	return &api.Empty{}, nil
}

func (s *GRPCServer) ListControllers(ctx context.Context, req *api.Empty) (*api.ControllersResponse, error) {
	cs, err := s.svc.Controllers.List(ctx, principalFrom(ctx))
	if err != nil {
		return nil, err
	}
	return &api.ControllersResponse{Controllers: cs}, nil
}

func (s *GRPCServer) SetControllers(ctx context.Context, req *api.SetControllersRequest) (*api.ControllersResponse, error) {
	cs, err := s.svc.Controllers.Set(ctx, principalFrom(ctx), req.IDs, req.Controller)
	if err != nil {
		return nil, err
	}
	return &api.ControllersResponse{Controllers: cs}, nil
}

func (s *GRPCServer) DelControllers(ctx context.Context, req *api.DelControllersRequest) (*api.ControllersResponse, error) {
	cs, err := s.svc.Controllers.Delete(ctx, principalFrom(ctx), req.IDs)
	if err != nil {
		return nil, err
	}
	return &api.ControllersResponse{Controllers: cs}, nil
}

func (s *GRPCServer) GetConfig(ctx context.Context, req *api.Empty) (*api.ConfigResponse, error) {
	cfg, err := s.svc.Settings.GetConfig(ctx)
	if err != nil {
		return nil, err
	}
	return &api.ConfigResponse{Config: cfg}, nil
}

func (s *GRPCServer) SetConfig(ctx context.Context, req *api.SetConfigRequest) (*api.Empty, error) {
	if err := s.svc.Settings.SetConfig(ctx, principalFrom(ctx), req.Config); err != nil {
		return nil, err
	}
	return &api.Empty{}, nil
}

func (s *GRPCServer) ListCustomDomains(ctx context.Context, req *api.Empty) (*api.CustomDomainsResponse, error) {
	ds, err := s.svc.Settings.ListCustomDomains(ctx)
	if err != nil {
		return nil, err
	}
	return &api.CustomDomainsResponse{Domains: ds}, nil
}

func (s *GRPCServer) SetCustomDomain(ctx context.Context, req *api.SetCustomDomainRequest) (*api.CustomDomainResponse, error) {
	d, err := s.svc.Settings.SetCustomDomain(ctx, principalFrom(ctx), req.Domain, req.Collection)
	if err != nil {
		return nil, err
	}
	return &api.CustomDomainResponse{Domain: d}, nil
}

func (s *GRPCServer) DelCustomDomain(ctx context.Context, req *api.DelCustomDomainRequest) (*api.Empty, error) {
	if err := s.svc.Settings.DelCustomDomain(ctx, principalFrom(ctx), req.Domain); err != nil {
		return nil, err
	}
	return &api.Empty{}, nil
}
