package controllers

import (
	"net/http"

	"github.com/lintang-b-s/go-suggest/pkg/kvdb"

	"github.com/julienschmidt/httprouter"
)

type createIndexRequest struct {
	Shards int `json:"shards" validate:"min=0,max=1024"` // number of shards, the server default when 0.
}

type document struct {
	ID     string            `json:"id" validate:"required,max=512"`
	Fields map[string]string `json:"fields" validate:"required"`
}

// addDocumentsRequest model info
//
//	@Description	request body for bulk document indexing.
type addDocumentsRequest struct {
	Docs []document `json:"docs" validate:"required,min=1,dive"`
}

// createIndex godoc
// @Summary		create an index with a fixed shard count.
// @Tags			indices
// @ID create-index
// @Param			index	path	string	true	"index name"
// @Param			body	body	createIndexRequest	false
// @Accept			application/json
// @Produce		application/json
// @Router			/api/indices/{index} [put]
// @Success		201	{object}	envelope
// @Failure		400	{object}	errorResponse
// @Failure		409	{object}	errorResponse
func (api *suggestAPI) createIndex(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var request createIndexRequest
	if err := api.readJSON(w, r, &request, true); err != nil {
		api.BadRequestResponse(w, r, err)
		return
	}
	if err := api.validate(request); err != nil {
		api.BadRequestResponse(w, r, err)
		return
	}

	index := ps.ByName("index")
	if err := api.indexService.CreateIndex(index, request.Shards); err != nil {
		api.handleError(w, r, err)
		return
	}

	if err := api.writeJSON(w, http.StatusCreated, envelope{"data": envelope{"acknowledged": true, "index": index}}, nil); err != nil {
		api.ServerErrorResponse(w, r, err)
	}
}

// deleteIndex godoc
// @Summary		delete an index, its documents and its suggesters.
// @Tags			indices
// @ID delete-index
// @Param			index	path	string	true	"index name"
// @Produce		application/json
// @Router			/api/indices/{index} [delete]
// @Success		200	{object}	envelope
// @Failure		404	{object}	errorResponse
func (api *suggestAPI) deleteIndex(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	if err := api.indexService.DeleteIndex(ps.ByName("index")); err != nil {
		api.handleError(w, r, err)
		return
	}
	api.acknowledged(w, r)
}

// addDocuments godoc
// @Summary		index documents. Suggesters see them after the next refresh.
// @Tags			indices
// @ID add-documents
// @Param			index	path	string	true	"index name"
// @Param			body	body	addDocumentsRequest	true
// @Accept			application/json
// @Produce		application/json
// @Router			/api/indices/{index}/docs [post]
// @Success		200	{object}	envelope
// @Failure		400	{object}	errorResponse
// @Failure		500	{object}	errorResponse
func (api *suggestAPI) addDocuments(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var request addDocumentsRequest
	if err := api.readJSON(w, r, &request, false); err != nil {
		api.BadRequestResponse(w, r, err)
		return
	}
	if err := api.validate(request); err != nil {
		api.BadRequestResponse(w, r, err)
		return
	}

	docs := make([]kvdb.Document, 0, len(request.Docs))
	for _, d := range request.Docs {
		docs = append(docs, kvdb.Document{ID: d.ID, Fields: d.Fields})
	}
	if err := api.indexService.AddDocuments(ps.ByName("index"), docs); err != nil {
		api.handleError(w, r, err)
		return
	}

	if err := api.writeJSON(w, http.StatusOK, envelope{"data": envelope{"indexed": len(docs)}}, nil); err != nil {
		api.ServerErrorResponse(w, r, err)
	}
}

// clearDocuments godoc
// @Summary		delete every document of an index. The index and its fields stay.
// @Tags			indices
// @ID clear-documents
// @Param			index	path	string	true	"index name"
// @Produce		application/json
// @Router			/api/indices/{index}/docs [delete]
// @Success		200	{object}	envelope
// @Failure		404	{object}	errorResponse
func (api *suggestAPI) clearDocuments(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	if err := api.indexService.ClearDocuments(ps.ByName("index")); err != nil {
		api.handleError(w, r, err)
		return
	}
	api.acknowledged(w, r)
}
