package controllers

import (
	"net/http"

	helper "github.com/lintang-b-s/go-suggest/pkg/http/http-router/router-helper"
	"github.com/lintang-b-s/go-suggest/pkg/suggester"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	enTranslations "github.com/go-playground/validator/v10/translations/en"
	"github.com/julienschmidt/httprouter"

	"go.uber.org/zap"
)

const maxBodyBytes = 32 << 20

type suggestAPI struct {
	suggestService SuggestService
	indexService   IndexService
	log            *zap.Logger
	validator      *validator.Validate
	trans          ut.Translator
}

func New(suggestService SuggestService, indexService IndexService, log *zap.Logger) *suggestAPI {
	validate := validator.New()
	english := en.New()
	uni := ut.New(english, english)
	trans, _ := uni.GetTranslator("en")
	_ = enTranslations.RegisterDefaultTranslations(validate, trans)

	return &suggestAPI{
		suggestService: suggestService,
		indexService:   indexService,
		log:            log,
		validator:      validate,
		trans:          trans,
	}
}

func (api *suggestAPI) Routes(group *helper.RouteGroup) {
	group.PUT("/indices/:index", api.createIndex)
	group.DELETE("/indices/:index", api.deleteIndex)
	group.POST("/indices/:index/docs", api.addDocuments)
	group.DELETE("/indices/:index/docs", api.clearDocuments)

	group.POST("/indices/:index/suggest", api.suggest)
	group.POST("/indices/:index/suggest/refresh", api.refreshIndex)
	group.POST("/indices/:index/fields/:field/suggest/refresh", api.refreshField)
	group.POST("/suggest/refresh", api.refreshAll)
	group.GET("/suggest/statistics", api.statistics)
}

// suggestRequest model info
//
//	@Description	request body for suggest.
type suggestRequest struct {
	Field         string  `json:"field" validate:"required"`                         // field path, e.g. ProductName.suggest, or _all.
	Term          string  `json:"term"`                                              // text typed so far.
	Size          int     `json:"size" validate:"required,min=1,max=1000"`           // maximum number of suggestions.
	Type          string  `json:"type" validate:"omitempty,oneof=simple full fuzzy"` // suggest type, simple when empty.
	Similarity    float64 `json:"similarity" validate:"min=0,max=1"`                 // similarity in [0, 1], enables fuzzy matching.
	Analyzer      string  `json:"analyzer" validate:"omitempty,max=128"`             // analyzer for both sides of full and fuzzy.
	IndexAnalyzer string  `json:"indexAnalyzer" validate:"omitempty,max=128"`        // index-time analyzer override.
	QueryAnalyzer string  `json:"queryAnalyzer" validate:"omitempty,max=128"`        // query-time analyzer override.
}

// suggestResponse model info
//
//	@Description	response body for suggest.
type suggestResponse struct {
	Suggestions []string `json:"suggestions"` // distinct suggestions in ascending order.
}

// suggest godoc
// @Summary		suggest completions for the text typed so far.
// @Description	suggest completions from a field of an index. Supports simple, full and fuzzy suggest types.
// @Tags			suggest
// @ID suggest
// @Param			index	path	string	true	"index name"
// @Param			body	body	suggestRequest	true
// @Accept			application/json
// @Produce		application/json
// @Router			/api/indices/{index}/suggest [post]
// @Success		200	{object}	suggestResponse
// @Failure		400	{object}	errorResponse
// @Failure		404	{object}	errorResponse
// @Failure		500	{object}	errorResponse
func (api *suggestAPI) suggest(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var request suggestRequest
	if err := api.readJSON(w, r, &request, false); err != nil {
		api.BadRequestResponse(w, r, err)
		return
	}
	if err := api.validate(request); err != nil {
		api.BadRequestResponse(w, r, err)
		return
	}

	suggestions, err := api.suggestService.Suggest(r.Context(), suggester.Query{
		Index:         ps.ByName("index"),
		Field:         request.Field,
		Term:          request.Term,
		Size:          request.Size,
		SuggestType:   suggester.SuggestType(request.Type),
		Similarity:    request.Similarity,
		Analyzer:      request.Analyzer,
		IndexAnalyzer: request.IndexAnalyzer,
		QueryAnalyzer: request.QueryAnalyzer,
	})
	if err != nil {
		api.handleError(w, r, err)
		return
	}

	if err := api.writeJSON(w, http.StatusOK, envelope{"data": suggestResponse{Suggestions: suggestions}}, nil); err != nil {
		api.ServerErrorResponse(w, r, err)
	}
}

// refreshAll godoc
// @Summary		rebuild every suggester.
// @Tags			suggest
// @ID refresh-all
// @Produce		application/json
// @Router			/api/suggest/refresh [post]
// @Success		200	{object}	envelope
// @Failure		500	{object}	errorResponse
func (api *suggestAPI) refreshAll(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	if err := api.suggestService.RefreshAll(r.Context()); err != nil {
		api.handleError(w, r, err)
		return
	}
	api.acknowledged(w, r)
}

// refreshIndex godoc
// @Summary		rebuild the suggesters of one index.
// @Tags			suggest
// @ID refresh-index
// @Param			index	path	string	true	"index name"
// @Produce		application/json
// @Router			/api/indices/{index}/suggest/refresh [post]
// @Success		200	{object}	envelope
// @Failure		404	{object}	errorResponse
// @Failure		500	{object}	errorResponse
func (api *suggestAPI) refreshIndex(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	if err := api.suggestService.RefreshIndex(r.Context(), ps.ByName("index")); err != nil {
		api.handleError(w, r, err)
		return
	}
	api.acknowledged(w, r)
}

// refreshField godoc
// @Summary		rebuild the suggesters of one field.
// @Tags			suggest
// @ID refresh-field
// @Param			index	path	string	true	"index name"
// @Param			field	path	string	true	"field path"
// @Produce		application/json
// @Router			/api/indices/{index}/fields/{field}/suggest/refresh [post]
// @Success		200	{object}	envelope
// @Failure		404	{object}	errorResponse
// @Failure		500	{object}	errorResponse
func (api *suggestAPI) refreshField(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	if err := api.suggestService.RefreshField(r.Context(), ps.ByName("index"), ps.ByName("field")); err != nil {
		api.handleError(w, r, err)
		return
	}
	api.acknowledged(w, r)
}

// statistics godoc
// @Summary		automaton sizes of every built suggester.
// @Tags			suggest
// @ID statistics
// @Produce		application/json
// @Router			/api/suggest/statistics [get]
// @Success		200	{object}	suggester.Snapshot
func (api *suggestAPI) statistics(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	if err := api.writeJSON(w, http.StatusOK, envelope{"data": api.suggestService.Statistics()}, nil); err != nil {
		api.ServerErrorResponse(w, r, err)
	}
}

func (api *suggestAPI) acknowledged(w http.ResponseWriter, r *http.Request) {
	if err := api.writeJSON(w, http.StatusOK, envelope{"data": envelope{"acknowledged": true}}, nil); err != nil {
		api.ServerErrorResponse(w, r, err)
	}
}
