package main

import (
	"net/http"

	"github.com/gorilla/mux"

	"marquee/handlers"
	"marquee/services/channels"
	"marquee/services/intro"
	"marquee/services/library"
	"marquee/services/metadata"
	"marquee/services/prequeue"
	"marquee/services/settings"
)

func registerRoutes(
	router *mux.Router,
	introSvc *intro.Service,
	librarySvc *library.Service,
	metadataSvc *metadata.Service,
	channelsSvc *channels.Service,
	prequeueMgr *prequeue.Manager,
	settingsSvc *settings.Service,
) {
	apiRouter := router.PathPrefix("/api").Subrouter()

	introHandler := handlers.NewIntroHandler(introSvc, librarySvc, metadataSvc)
	apiRouter.HandleFunc("/intros/{itemID}", introHandler.Get).Methods(http.MethodGet)

	channelsHandler := handlers.NewChannelsHandler(channelsSvc)
	apiRouter.HandleFunc("/channels", channelsHandler.List).Methods(http.MethodGet)
	apiRouter.HandleFunc("/channels/{category}", channelsHandler.Trailers).Methods(http.MethodGet)

	trailersHandler := handlers.NewTrailersHandler(prequeueMgr, metadataSvc)
	apiRouter.HandleFunc("/trailers/{trailerID}/prequeue", trailersHandler.Start).Methods(http.MethodPost)
	apiRouter.HandleFunc("/trailers/prequeue/{id}/status", trailersHandler.Status).Methods(http.MethodGet)
	apiRouter.HandleFunc("/trailers/prequeue/{id}/stream", trailersHandler.Stream).Methods(http.MethodGet)

	settingsHandler := handlers.NewSettingsHandler(settingsSvc)
	apiRouter.HandleFunc("/settings", settingsHandler.Get).Methods(http.MethodGet)
	apiRouter.HandleFunc("/settings", settingsHandler.Put).Methods(http.MethodPut)

	libraryHandler := handlers.NewLibraryHandler(librarySvc)
	apiRouter.HandleFunc("/library/items", libraryHandler.Create).Methods(http.MethodPost)
	apiRouter.HandleFunc("/library/items/{id}", libraryHandler.Get).Methods(http.MethodGet)
	apiRouter.HandleFunc("/library/items/{id}", libraryHandler.Delete).Methods(http.MethodDelete)
	apiRouter.HandleFunc("/library/items/{id}/played", libraryHandler.MarkPlayed).Methods(http.MethodPost)
}
