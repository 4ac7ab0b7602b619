package receipt

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/onsi/gomega/ghttp"

	"github.com/zombor/receiptd/internal/pipeline"
)

var _ = Describe("Server", func() {
	var (
		service     *Service
		server      *Server
		auth        BasicAuth
		processor   *mockProcessor
		ghttpServer *ghttp.Server
	)

	setupServer := func() {
		if ghttpServer != nil {
			ghttpServer.Close()
		}
		ghttpServer = ghttp.NewServer()
		ghttpServer.AppendHandlers(server.ServeHTTP)
	}

	postUpload := func(filename, query string) *http.Response {
		var b bytes.Buffer
		writer := multipart.NewWriter(&b)
		part, _ := writer.CreateFormFile("file", filename)
		part.Write([]byte("fake image data"))
		writer.Close()

		resp, err := http.Post(ghttpServer.URL()+"/api/receipts"+query, writer.FormDataContentType(), &b)
		Expect(err).NotTo(HaveOccurred())
		return resp
	}

	BeforeEach(func() {
		processor = newMockProcessor()
		service = NewService(newMockDB(), processor, newMockStorage())
		auth = BasicAuth{}
		server = NewServerWithMux(service, auth, "test", http.NewServeMux())
		setupServer()
	})

	AfterEach(func() {
		if ghttpServer != nil {
			ghttpServer.Close()
		}
	})

	Describe("handleInfo", func() {
		When("request method is GET", func() {
			It("should return status OK", func() {
				resp, err := http.Get(ghttpServer.URL() + "/")
				Expect(err).NotTo(HaveOccurred())
				Expect(resp.StatusCode).To(Equal(http.StatusOK))
				resp.Body.Close()
			})

			It("should describe the API and its version", func() {
				resp, err := http.Get(ghttpServer.URL() + "/")
				Expect(err).NotTo(HaveOccurred())
				defer resp.Body.Close()
				var response map[string]string
				body, err := io.ReadAll(resp.Body)
				Expect(err).NotTo(HaveOccurred())
				Expect(json.Unmarshal(body, &response)).NotTo(HaveOccurred())
				Expect(response["message"]).To(ContainSubstring("Receipt"))
				Expect(response["version"]).To(Equal("test"))
			})
		})

		When("request method is not GET", func() {
			It("should return status Method Not Allowed", func() {
				resp, err := http.Post(ghttpServer.URL()+"/", "application/json", nil)
				Expect(err).NotTo(HaveOccurred())
				Expect(resp.StatusCode).To(Equal(http.StatusMethodNotAllowed))
				resp.Body.Close()
			})
		})
	})

	Describe("handleHealth", func() {
		It("should return status OK", func() {
			resp, err := http.Get(ghttpServer.URL() + "/health")
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(http.StatusOK))
			resp.Body.Close()
		})

		It("should report healthy and list the expense categories", func() {
			resp, err := http.Get(ghttpServer.URL() + "/health")
			Expect(err).NotTo(HaveOccurred())
			defer resp.Body.Close()
			var response map[string]interface{}
			body, err := io.ReadAll(resp.Body)
			Expect(err).NotTo(HaveOccurred())
			Expect(json.Unmarshal(body, &response)).NotTo(HaveOccurred())
			Expect(response["status"]).To(Equal("healthy"))
			Expect(response["categories"]).To(ContainElement("Food"))
			Expect(response["categories"]).To(ContainElement("Other"))
		})
	})

	Describe("handleListReceipts", func() {
		When("receipts exist", func() {
			BeforeEach(func() {
				db := newMockDB()
				db.receipts["id1"] = &Receipt{ID: "id1", Record: &pipeline.Record{MerchantName: "Merchant 1"}}
				db.receipts["id2"] = &Receipt{ID: "id2", Record: &pipeline.Record{MerchantName: "Merchant 2"}}
				service = NewService(db, newMockProcessor(), newMockStorage())
				server = NewServerWithMux(service, auth, "test", http.NewServeMux())
				setupServer()
			})

			It("should return status OK", func() {
				resp, err := http.Get(ghttpServer.URL() + "/api/receipts")
				Expect(err).NotTo(HaveOccurred())
				Expect(resp.StatusCode).To(Equal(http.StatusOK))
				resp.Body.Close()
			})

			It("should return all receipts", func() {
				resp, err := http.Get(ghttpServer.URL() + "/api/receipts")
				Expect(err).NotTo(HaveOccurred())
				defer resp.Body.Close()
				var receipts []*Receipt
				body, err := io.ReadAll(resp.Body)
				Expect(err).NotTo(HaveOccurred())
				Expect(json.Unmarshal(body, &receipts)).NotTo(HaveOccurred())
				Expect(receipts).To(HaveLen(2))
			})

			It("should set Content-Type to application/json", func() {
				resp, err := http.Get(ghttpServer.URL() + "/api/receipts")
				Expect(err).NotTo(HaveOccurred())
				defer resp.Body.Close()
				Expect(resp.Header.Get("Content-Type")).To(Equal("application/json"))
			})
		})

		When("no receipts exist", func() {
			It("should return status OK", func() {
				resp, err := http.Get(ghttpServer.URL() + "/api/receipts")
				Expect(err).NotTo(HaveOccurred())
				Expect(resp.StatusCode).To(Equal(http.StatusOK))
				resp.Body.Close()
			})

			It("should return an empty array", func() {
				resp, err := http.Get(ghttpServer.URL() + "/api/receipts")
				Expect(err).NotTo(HaveOccurred())
				defer resp.Body.Close()
				var receipts []*Receipt
				body, err := io.ReadAll(resp.Body)
				Expect(err).NotTo(HaveOccurred())
				Expect(json.Unmarshal(body, &receipts)).NotTo(HaveOccurred())
				Expect(receipts).To(BeEmpty())
			})
		})

		When("service returns an error", func() {
			BeforeEach(func() {
				db := newMockDB()
				db.listErr = errors.New("service error")
				service = NewService(db, newMockProcessor(), newMockStorage())
				server = NewServerWithMux(service, auth, "test", http.NewServeMux())
				setupServer()
			})

			It("should return status Internal Server Error", func() {
				resp, err := http.Get(ghttpServer.URL() + "/api/receipts")
				Expect(err).NotTo(HaveOccurred())
				Expect(resp.StatusCode).To(Equal(http.StatusInternalServerError))
				resp.Body.Close()
			})

			It("should return error message", func() {
				resp, err := http.Get(ghttpServer.URL() + "/api/receipts")
				Expect(err).NotTo(HaveOccurred())
				defer resp.Body.Close()
				body, err := io.ReadAll(resp.Body)
				Expect(err).NotTo(HaveOccurred())
				Expect(string(body)).To(ContainSubstring("Internal server error"))
			})
		})
	})

	Describe("handleUploadReceipt", func() {
		When("upload succeeds", func() {
			It("should return status Created", func() {
				resp := postUpload("test.jpg", "")
				Expect(resp.StatusCode).To(Equal(http.StatusCreated))
				resp.Body.Close()
			})

			It("should return a receipt with an ID and extracted record", func() {
				resp := postUpload("test.jpg", "")
				defer resp.Body.Close()
				var receipt Receipt
				body, err := io.ReadAll(resp.Body)
				Expect(err).NotTo(HaveOccurred())
				Expect(json.Unmarshal(body, &receipt)).NotTo(HaveOccurred())
				Expect(receipt.ID).NotTo(BeEmpty())
				Expect(receipt.Record.MerchantName).To(Equal("Blue Bottle Coffee"))
			})

			It("should infer the content type from the extension", func() {
				resp := postUpload("test.jpg", "")
				defer resp.Body.Close()
				var receipt Receipt
				body, err := io.ReadAll(resp.Body)
				Expect(err).NotTo(HaveOccurred())
				Expect(json.Unmarshal(body, &receipt)).NotTo(HaveOccurred())
				Expect(receipt.ContentType).To(Equal("image/jpeg"))
			})

			It("should set Content-Type to application/json", func() {
				resp := postUpload("test.jpg", "")
				defer resp.Body.Close()
				Expect(resp.Header.Get("Content-Type")).To(Equal("application/json"))
			})

			It("should default to advanced extraction", func() {
				resp := postUpload("test.jpg", "")
				resp.Body.Close()
				Expect(processor.lastAdvanced).To(BeTrue())
			})
		})

		When("simple extraction is requested", func() {
			It("should forward the flag to the processor", func() {
				resp := postUpload("test.jpg", "?advanced=false")
				Expect(resp.StatusCode).To(Equal(http.StatusCreated))
				resp.Body.Close()
				Expect(processor.lastAdvanced).To(BeFalse())
			})
		})

		When("upload succeeds with PNG file", func() {
			It("should return status Created", func() {
				resp := postUpload("test.png", "")
				Expect(resp.StatusCode).To(Equal(http.StatusCreated))
				resp.Body.Close()
			})
		})

		When("upload succeeds with PDF file", func() {
			It("should return status Created", func() {
				resp := postUpload("test.pdf", "")
				Expect(resp.StatusCode).To(Equal(http.StatusCreated))
				resp.Body.Close()
			})
		})

		When("the file type is unsupported", func() {
			It("should return status Bad Request", func() {
				resp := postUpload("notes.txt", "")
				Expect(resp.StatusCode).To(Equal(http.StatusBadRequest))
				resp.Body.Close()
			})

			It("should return error in JSON", func() {
				resp := postUpload("notes.txt", "")
				defer resp.Body.Close()
				var response map[string]string
				body, err := io.ReadAll(resp.Body)
				Expect(err).NotTo(HaveOccurred())
				Expect(json.Unmarshal(body, &response)).NotTo(HaveOccurred())
				Expect(response["error"]).To(ContainSubstring("Unsupported file type"))
			})
		})

		When("no file is provided", func() {
			It("should return status Bad Request", func() {
				var b bytes.Buffer
				writer := multipart.NewWriter(&b)
				writer.Close()

				resp, err := http.Post(ghttpServer.URL()+"/api/receipts", writer.FormDataContentType(), &b)
				Expect(err).NotTo(HaveOccurred())
				Expect(resp.StatusCode).To(Equal(http.StatusBadRequest))
				resp.Body.Close()
			})

			It("should return error message", func() {
				var b bytes.Buffer
				writer := multipart.NewWriter(&b)
				writer.Close()

				resp, err := http.Post(ghttpServer.URL()+"/api/receipts", writer.FormDataContentType(), &b)
				Expect(err).NotTo(HaveOccurred())
				defer resp.Body.Close()
				body, err := io.ReadAll(resp.Body)
				Expect(err).NotTo(HaveOccurred())
				// Error message should indicate no file was provided
				Expect(string(body)).To(ContainSubstring("file"))
			})
		})

		When("invalid multipart form", func() {
			It("should return status Bad Request", func() {
				resp, err := http.Post(ghttpServer.URL()+"/api/receipts", "multipart/form-data", bytes.NewBufferString("invalid"))
				Expect(err).NotTo(HaveOccurred())
				Expect(resp.StatusCode).To(Equal(http.StatusBadRequest))
				resp.Body.Close()
			})

			It("should return error message", func() {
				resp, err := http.Post(ghttpServer.URL()+"/api/receipts", "multipart/form-data", bytes.NewBufferString("invalid"))
				Expect(err).NotTo(HaveOccurred())
				defer resp.Body.Close()
				body, err := io.ReadAll(resp.Body)
				Expect(err).NotTo(HaveOccurred())
				Expect(string(body)).To(ContainSubstring("Error parsing form"))
			})
		})

		When("saving the receipt fails", func() {
			BeforeEach(func() {
				db := newMockDB()
				db.saveErr = errors.New("database error")
				service = NewService(db, newMockProcessor(), newMockStorage())
				server = NewServerWithMux(service, auth, "test", http.NewServeMux())
				setupServer()
			})

			It("should return status Internal Server Error", func() {
				resp := postUpload("test.jpg", "")
				Expect(resp.StatusCode).To(Equal(http.StatusInternalServerError))
				resp.Body.Close()
			})

			It("should return error in JSON", func() {
				resp := postUpload("test.jpg", "")
				defer resp.Body.Close()
				var response map[string]string
				body, err := io.ReadAll(resp.Body)
				Expect(err).NotTo(HaveOccurred())
				Expect(json.Unmarshal(body, &response)).NotTo(HaveOccurred())
				Expect(response["error"]).To(ContainSubstring("database error"))
			})
		})
	})

	Describe("handleGetReceipt", func() {
		When("receipt exists", func() {
			BeforeEach(func() {
				db := newMockDB()
				db.receipts["test-id"] = &Receipt{
					ID:     "test-id",
					Record: &pipeline.Record{MerchantName: "Corner Deli"},
				}
				service = NewService(db, newMockProcessor(), newMockStorage())
				server = NewServerWithMux(service, auth, "test", http.NewServeMux())
				setupServer()
			})

			It("should return status OK", func() {
				resp, err := http.Get(ghttpServer.URL() + "/api/receipts/test-id")
				Expect(err).NotTo(HaveOccurred())
				Expect(resp.StatusCode).To(Equal(http.StatusOK))
				resp.Body.Close()
			})

			It("should return the correct receipt", func() {
				resp, err := http.Get(ghttpServer.URL() + "/api/receipts/test-id")
				Expect(err).NotTo(HaveOccurred())
				defer resp.Body.Close()
				var got Receipt
				body, err := io.ReadAll(resp.Body)
				Expect(err).NotTo(HaveOccurred())
				Expect(json.Unmarshal(body, &got)).NotTo(HaveOccurred())
				Expect(got.ID).To(Equal("test-id"))
				Expect(got.Record.MerchantName).To(Equal("Corner Deli"))
			})

			It("should set Content-Type to application/json", func() {
				resp, err := http.Get(ghttpServer.URL() + "/api/receipts/test-id")
				Expect(err).NotTo(HaveOccurred())
				defer resp.Body.Close()
				Expect(resp.Header.Get("Content-Type")).To(Equal("application/json"))
			})
		})

		When("receipt does not exist", func() {
			It("should return status Not Found", func() {
				resp, err := http.Get(ghttpServer.URL() + "/api/receipts/nonexistent")
				Expect(err).NotTo(HaveOccurred())
				Expect(resp.StatusCode).To(Equal(http.StatusNotFound))
				resp.Body.Close()
			})

			It("should return error message", func() {
				resp, err := http.Get(ghttpServer.URL() + "/api/receipts/nonexistent")
				Expect(err).NotTo(HaveOccurred())
				defer resp.Body.Close()
				body, err := io.ReadAll(resp.Body)
				Expect(err).NotTo(HaveOccurred())
				Expect(string(body)).To(ContainSubstring("Receipt not found"))
			})
		})
	})

	Describe("handleGetReceiptFile", func() {
		When("receipt and file exist", func() {
			BeforeEach(func() {
				db := newMockDB()
				storage := newMockStorage()
				db.receipts["test-id"] = &Receipt{
					ID:          "test-id",
					Filename:    "test-file.jpg",
					ContentType: "image/jpeg",
				}
				storage.files["test-file.jpg"] = []byte("file content")
				service = NewService(db, newMockProcessor(), storage)
				server = NewServerWithMux(service, auth, "test", http.NewServeMux())
				setupServer()
			})

			It("should return status OK", func() {
				resp, err := http.Get(ghttpServer.URL() + "/api/receipts/test-id/file")
				Expect(err).NotTo(HaveOccurred())
				Expect(resp.StatusCode).To(Equal(http.StatusOK))
				resp.Body.Close()
			})

			It("should return the file content", func() {
				resp, err := http.Get(ghttpServer.URL() + "/api/receipts/test-id/file")
				Expect(err).NotTo(HaveOccurred())
				defer resp.Body.Close()
				body, err := io.ReadAll(resp.Body)
				Expect(err).NotTo(HaveOccurred())
				Expect(string(body)).To(Equal("file content"))
			})

			It("should set the correct Content-Type header", func() {
				resp, err := http.Get(ghttpServer.URL() + "/api/receipts/test-id/file")
				Expect(err).NotTo(HaveOccurred())
				defer resp.Body.Close()
				Expect(resp.Header.Get("Content-Type")).To(Equal("image/jpeg"))
			})
		})

		When("receipt does not exist", func() {
			It("should return status Not Found", func() {
				resp, err := http.Get(ghttpServer.URL() + "/api/receipts/nonexistent/file")
				Expect(err).NotTo(HaveOccurred())
				Expect(resp.StatusCode).To(Equal(http.StatusNotFound))
				resp.Body.Close()
			})

			It("should return error message", func() {
				resp, err := http.Get(ghttpServer.URL() + "/api/receipts/nonexistent/file")
				Expect(err).NotTo(HaveOccurred())
				defer resp.Body.Close()
				body, err := io.ReadAll(resp.Body)
				Expect(err).NotTo(HaveOccurred())
				Expect(string(body)).To(ContainSubstring("File not found"))
			})
		})

		When("file does not exist in storage", func() {
			BeforeEach(func() {
				db := newMockDB()
				db.receipts["test-id"] = &Receipt{
					ID:          "test-id",
					Filename:    "missing-file.jpg",
					ContentType: "image/jpeg",
				}
				service = NewService(db, newMockProcessor(), newMockStorage())
				server = NewServerWithMux(service, auth, "test", http.NewServeMux())
				setupServer()
			})

			It("should return status Not Found", func() {
				resp, err := http.Get(ghttpServer.URL() + "/api/receipts/test-id/file")
				Expect(err).NotTo(HaveOccurred())
				Expect(resp.StatusCode).To(Equal(http.StatusNotFound))
				resp.Body.Close()
			})
		})
	})

	Describe("handleDeleteReceipt", func() {
		When("deletion succeeds", func() {
			BeforeEach(func() {
				db := newMockDB()
				storage := newMockStorage()
				db.receipts["test-id"] = &Receipt{
					ID:       "test-id",
					Filename: "test-file.jpg",
				}
				storage.files["test-file.jpg"] = []byte("data")
				service = NewService(db, newMockProcessor(), storage)
				server = NewServerWithMux(service, auth, "test", http.NewServeMux())
				setupServer()
			})

			It("should return status No Content", func() {
				req, err := http.NewRequest("DELETE", ghttpServer.URL()+"/api/receipts/test-id", nil)
				Expect(err).NotTo(HaveOccurred())
				resp, err := http.DefaultClient.Do(req)
				Expect(err).NotTo(HaveOccurred())
				Expect(resp.StatusCode).To(Equal(http.StatusNoContent))
				resp.Body.Close()
			})

			It("should remove the receipt from the database", func() {
				req, err := http.NewRequest("DELETE", ghttpServer.URL()+"/api/receipts/test-id", nil)
				Expect(err).NotTo(HaveOccurred())
				resp, err := http.DefaultClient.Do(req)
				Expect(err).NotTo(HaveOccurred())
				resp.Body.Close()
				// Verify deletion by attempting to get the receipt
				_, getErr := service.GetReceipt("test-id")
				Expect(getErr).To(HaveOccurred())
			})
		})

		When("receipt does not exist", func() {
			It("should return status Internal Server Error", func() {
				req, err := http.NewRequest("DELETE", ghttpServer.URL()+"/api/receipts/nonexistent", nil)
				Expect(err).NotTo(HaveOccurred())
				resp, err := http.DefaultClient.Do(req)
				Expect(err).NotTo(HaveOccurred())
				Expect(resp.StatusCode).To(Equal(http.StatusInternalServerError))
				resp.Body.Close()
			})

			It("should return error message", func() {
				req, err := http.NewRequest("DELETE", ghttpServer.URL()+"/api/receipts/nonexistent", nil)
				Expect(err).NotTo(HaveOccurred())
				resp, err := http.DefaultClient.Do(req)
				Expect(err).NotTo(HaveOccurred())
				defer resp.Body.Close()
				body, err := io.ReadAll(resp.Body)
				Expect(err).NotTo(HaveOccurred())
				Expect(string(body)).To(ContainSubstring("Error deleting receipt"))
			})
		})
	})

	Describe("handleSummary", func() {
		When("receipts exist", func() {
			BeforeEach(func() {
				db := newMockDB()
				db.receipts["id1"] = &Receipt{
					ID:     "id1",
					Record: &pipeline.Record{TransactionDate: "2024-01-15", TotalAmount: 20.0, Category: "Food"},
				}
				db.receipts["id2"] = &Receipt{
					ID:     "id2",
					Record: &pipeline.Record{TransactionDate: "2024-01-16", TotalAmount: 10.0, Category: "Transport"},
				}
				service = NewService(db, newMockProcessor(), newMockStorage())
				server = NewServerWithMux(service, auth, "test", http.NewServeMux())
				setupServer()
			})

			It("should return status OK", func() {
				resp, err := http.Get(ghttpServer.URL() + "/api/analytics/summary")
				Expect(err).NotTo(HaveOccurred())
				Expect(resp.StatusCode).To(Equal(http.StatusOK))
				resp.Body.Close()
			})

			It("should return the aggregated summary", func() {
				resp, err := http.Get(ghttpServer.URL() + "/api/analytics/summary")
				Expect(err).NotTo(HaveOccurred())
				defer resp.Body.Close()
				var summary Summary
				body, err := io.ReadAll(resp.Body)
				Expect(err).NotTo(HaveOccurred())
				Expect(json.Unmarshal(body, &summary)).NotTo(HaveOccurred())
				Expect(summary.TotalSpent).To(Equal(30.0))
				Expect(summary.ReceiptCount).To(Equal(2))
				Expect(summary.CategoryTotals).To(HaveKeyWithValue("Food", 20.0))
			})
		})

		When("service returns an error", func() {
			BeforeEach(func() {
				db := newMockDB()
				db.listErr = errors.New("service error")
				service = NewService(db, newMockProcessor(), newMockStorage())
				server = NewServerWithMux(service, auth, "test", http.NewServeMux())
				setupServer()
			})

			It("should return status Internal Server Error", func() {
				resp, err := http.Get(ghttpServer.URL() + "/api/analytics/summary")
				Expect(err).NotTo(HaveOccurred())
				Expect(resp.StatusCode).To(Equal(http.StatusInternalServerError))
				resp.Body.Close()
			})
		})
	})

	Describe("authenticate", func() {
		var result bool

		When("no auth is configured", func() {
			It("should return true", func() {
				req, err := http.NewRequest("GET", ghttpServer.URL()+"/", nil)
				Expect(err).NotTo(HaveOccurred())
				result = server.authenticate(req)
				Expect(result).To(BeTrue())
			})
		})

		When("valid credentials are provided", func() {
			BeforeEach(func() {
				auth = BasicAuth{Username: "user", Password: "pass"}
				server = NewServerWithMux(service, auth, "test", http.NewServeMux())
				setupServer()
			})

			It("should return true", func() {
				req, err := http.NewRequest("GET", ghttpServer.URL()+"/", nil)
				Expect(err).NotTo(HaveOccurred())
				credentials := base64.StdEncoding.EncodeToString([]byte("user:pass"))
				req.Header.Set("Authorization", "Basic "+credentials)
				result = server.authenticate(req)
				Expect(result).To(BeTrue())
			})
		})

		When("invalid credentials are provided", func() {
			BeforeEach(func() {
				auth = BasicAuth{Username: "user", Password: "pass"}
				server = NewServerWithMux(service, auth, "test", http.NewServeMux())
				setupServer()
			})

			It("should return false", func() {
				req, err := http.NewRequest("GET", ghttpServer.URL()+"/", nil)
				Expect(err).NotTo(HaveOccurred())
				credentials := base64.StdEncoding.EncodeToString([]byte("user:wrong"))
				req.Header.Set("Authorization", "Basic "+credentials)
				result = server.authenticate(req)
				Expect(result).To(BeFalse())
			})
		})

		When("no authorization header is provided", func() {
			BeforeEach(func() {
				auth = BasicAuth{Username: "user", Password: "pass"}
				server = NewServerWithMux(service, auth, "test", http.NewServeMux())
				setupServer()
			})

			It("should return false", func() {
				req, err := http.NewRequest("GET", ghttpServer.URL()+"/", nil)
				Expect(err).NotTo(HaveOccurred())
				result = server.authenticate(req)
				Expect(result).To(BeFalse())
			})
		})
	})

	Describe("requireAuth", func() {
		When("auth is configured", func() {
			BeforeEach(func() {
				auth = BasicAuth{Username: "user", Password: "pass"}
				server = NewServerWithMux(service, auth, "test", http.NewServeMux())
				setupServer()
			})

			It("should reject unauthenticated API requests", func() {
				resp, err := http.Get(ghttpServer.URL() + "/api/receipts")
				Expect(err).NotTo(HaveOccurred())
				Expect(resp.StatusCode).To(Equal(http.StatusUnauthorized))
				resp.Body.Close()
			})

			It("should set WWW-Authenticate header", func() {
				resp, err := http.Get(ghttpServer.URL() + "/api/receipts")
				Expect(err).NotTo(HaveOccurred())
				defer resp.Body.Close()
				Expect(resp.Header.Get("WWW-Authenticate")).NotTo(BeEmpty())
			})

			It("should accept authenticated API requests", func() {
				req, err := http.NewRequest("GET", ghttpServer.URL()+"/api/receipts", nil)
				Expect(err).NotTo(HaveOccurred())
				credentials := base64.StdEncoding.EncodeToString([]byte("user:pass"))
				req.Header.Set("Authorization", "Basic "+credentials)
				resp, err := http.DefaultClient.Do(req)
				Expect(err).NotTo(HaveOccurred())
				Expect(resp.StatusCode).To(Equal(http.StatusOK))
				resp.Body.Close()
			})

			It("should leave the health endpoint open", func() {
				resp, err := http.Get(ghttpServer.URL() + "/health")
				Expect(err).NotTo(HaveOccurred())
				Expect(resp.StatusCode).To(Equal(http.StatusOK))
				resp.Body.Close()
			})

			It("should leave the info endpoint open", func() {
				resp, err := http.Get(ghttpServer.URL() + "/")
				Expect(err).NotTo(HaveOccurred())
				Expect(resp.StatusCode).To(Equal(http.StatusOK))
				resp.Body.Close()
			})
		})
	})

	Describe("corsMiddleware", func() {
		It("sets CORS headers and calls through", func() {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest("GET", "/api/receipts", nil)
			called := false
			server.corsMiddleware(func(w http.ResponseWriter, r *http.Request) {
				called = true
			})(rec, req)
			Expect(called).To(BeTrue())
			Expect(rec.Header().Get("Access-Control-Allow-Origin")).To(Equal("*"))
		})

		It("short-circuits preflight OPTIONS requests", func() {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest("OPTIONS", "/api/receipts", nil)
			called := false
			server.corsMiddleware(func(w http.ResponseWriter, r *http.Request) {
				called = true
			})(rec, req)
			Expect(called).To(BeFalse())
			Expect(rec.Code).To(Equal(http.StatusNoContent))
			Expect(rec.Header().Get("Access-Control-Allow-Methods")).To(ContainSubstring("OPTIONS"))
		})
	})
})
