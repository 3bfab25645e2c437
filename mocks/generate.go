package mocks

//go:generate mockgen -destination=./mock_feed.go -package=mocks github.com/rxtech-lab/argo-autotrader/internal/feed Feed
//go:generate mockgen -destination=./mock_venue.go -package=mocks github.com/rxtech-lab/argo-autotrader/internal/venue Venue
//go:generate mockgen -destination=./mock_dispatcher.go -package=mocks github.com/rxtech-lab/argo-autotrader/internal/channel Dispatcher
//go:generate mockgen -destination=./mock_advisor.go -package=mocks github.com/rxtech-lab/argo-autotrader/internal/advisory Advisor
//go:generate mockgen -destination=./mock_store.go -package=mocks github.com/rxtech-lab/argo-autotrader/internal/ledger Store
