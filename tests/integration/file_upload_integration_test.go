package integration

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/kendall-kelly/cafe-pos-api/models"
	"github.com/kendall-kelly/cafe-pos-api/services"
	"github.com/kendall-kelly/cafe-pos-api/tests/testutil"
	"github.com/stretchr/testify/suite"
)

// FileUploadIntegrationTestSuite covers product images on both storage backends
type FileUploadIntegrationTestSuite struct {
	suite.Suite
}

// uploadImage posts a multipart product image as the owner
func uploadImage(app *testutil.App, productID, filename string, content []byte) *httptest.ResponseRecorder {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, _ := writer.CreateFormFile("image", filename)
	part.Write(content)
	writer.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/products/"+productID+"/image", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+testutil.OwnerToken)

	w := httptest.NewRecorder()
	app.Router.ServeHTTP(w, req)
	return w
}

func (suite *FileUploadIntegrationTestSuite) TestLocalStorage_UploadServeAndReplace() {
	app := testutil.NewApp(suite.T())
	product := app.CreateProduct(suite.T(), "Croissant", 22000, 10)

	w := uploadImage(app, product.ID.String(), "croissant.png", []byte("first image"))
	suite.Require().Equal(http.StatusOK, w.Code, w.Body.String())

	var uploaded models.Product
	testutil.DecodeData(suite.T(), w.Body.Bytes(), &uploaded)
	suite.Require().NotNil(uploaded.ImageKey)
	suite.Require().NotNil(uploaded.ImageURL)
	suite.True(strings.HasPrefix(*uploaded.ImageURL, "/api/v1/uploads/"))
	suite.True(strings.HasSuffix(*uploaded.ImageKey, "_croissant.png"))

	// the stored file is served publicly
	w = app.Do(http.MethodGet, *uploaded.ImageURL, "", nil)
	suite.Require().Equal(http.StatusOK, w.Code)
	suite.Equal("image/png", w.Header().Get("Content-Type"))
	suite.Equal("first image", w.Body.String())

	first := filepath.Join(app.Config.UploadDir, *uploaded.ImageKey)
	suite.FileExists(first)

	w = uploadImage(app, product.ID.String(), "croissant-v2.jpg", []byte("second image"))
	suite.Require().Equal(http.StatusOK, w.Code, w.Body.String())

	var replaced models.Product
	testutil.DecodeData(suite.T(), w.Body.Bytes(), &replaced)
	suite.NotEqual(*uploaded.ImageKey, *replaced.ImageKey)

	_, err := os.Stat(first)
	suite.True(os.IsNotExist(err), "previous image should be removed")

	// the public menu carries the new URL
	w = app.Do(http.MethodGet, "/api/v1/products/"+product.ID.String(), "", nil)
	suite.Require().Equal(http.StatusOK, w.Code)
	var fetched models.Product
	testutil.DecodeData(suite.T(), w.Body.Bytes(), &fetched)
	suite.Require().NotNil(fetched.ImageURL)
	suite.Equal(*replaced.ImageURL, *fetched.ImageURL)
}

func (suite *FileUploadIntegrationTestSuite) TestS3Storage_Upload() {
	mockS3 := services.NewMockS3Service()
	app := testutil.NewApp(suite.T(), testutil.WithImages(services.NewS3ImageService(mockS3)))
	product := app.CreateProduct(suite.T(), "Espresso", 15000, 10)

	w := uploadImage(app, product.ID.String(), "espresso.webp", []byte("webp bytes"))
	suite.Require().Equal(http.StatusOK, w.Code, w.Body.String())

	var uploaded models.Product
	testutil.DecodeData(suite.T(), w.Body.Bytes(), &uploaded)
	suite.Require().NotNil(uploaded.ImageKey)
	suite.True(mockS3.FileExists(*uploaded.ImageKey))
	suite.Require().NotNil(uploaded.ImageURL)
	suite.Contains(*uploaded.ImageURL, *uploaded.ImageKey)
}

func (suite *FileUploadIntegrationTestSuite) TestRejectedUploads() {
	app := testutil.NewApp(suite.T())
	product := app.CreateProduct(suite.T(), "Bagel", 20000, 10)

	w := uploadImage(app, product.ID.String(), "bagel.gif", []byte("gif"))
	suite.Equal(http.StatusBadRequest, w.Code)
	suite.Equal("INVALID_FILE_FORMAT", testutil.ErrorCode(suite.T(), w.Body.Bytes()))

	w = uploadImage(app, "00000000-0000-4000-8000-000000000000", "bagel.png", []byte("png"))
	suite.Equal(http.StatusNotFound, w.Code)
	suite.Equal("PRODUCT_NOT_FOUND", testutil.ErrorCode(suite.T(), w.Body.Bytes()))

	w = app.Do(http.MethodGet, "/api/v1/uploads/missing.png", "", nil)
	suite.Equal(http.StatusNotFound, w.Code)
	suite.Equal("FILE_NOT_FOUND", testutil.ErrorCode(suite.T(), w.Body.Bytes()))
}

func TestFileUploadIntegrationSuite(t *testing.T) {
	suite.Run(t, new(FileUploadIntegrationTestSuite))
}
