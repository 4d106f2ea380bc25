package contract

const sampleXML = `<?xml version="1.0" encoding="UTF-8"?>
<Data>
  <Contract>
    <RequestHandlers>
      <RequestHandler Classification="amazons3" Name="com.spectralogic.s3.server.handler.reqhandler.amazons3.GetBucketRequestHandler">
        <Request Action="LIST" HttpVerb="GET" IncludeIdInPath="false" Resource="BUCKET" ResourceType="NON_SINGLETON" BucketRequirement="REQUIRED" ObjectRequirement="NOT_ALLOWED">
          <OptionalQueryParams>
            <Param Name="Delimiter" Type="java.lang.String"/>
            <Param Name="MaxKeys" Type="int"/>
          </OptionalQueryParams>
          <RequiredQueryParams/>
        </Request>
        <ResponseCodes>
          <ResponseCode>
            <Code>200</Code>
            <ResponseTypes>
              <ResponseType Type="com.spectralogic.s3.server.domain.BucketObjectsApiBean"/>
            </ResponseTypes>
          </ResponseCode>
          <ResponseCode>
            <Code>404</Code>
            <ResponseTypes>
              <ResponseType Type="com.spectralogic.s3.server.domain.HttpErrorResultApiBean"/>
            </ResponseTypes>
          </ResponseCode>
        </ResponseCodes>
        <Documentation>Lists the objects of a bucket.</Documentation>
        <Version>1.2A7B</Version>
      </RequestHandler>
      <RequestHandler Classification="amazons3" Name="com.spectralogic.s3.server.handler.reqhandler.amazons3.DeleteObjectRequestHandler">
        <Request Action="DELETE" HttpVerb="DELETE" IncludeIdInPath="false" Resource="OBJECT" BucketRequirement="REQUIRED" ObjectRequirement="REQUIRED"/>
        <ResponseCodes>
          <ResponseCode>
            <Code>204</Code>
            <ResponseTypes>
              <ResponseType Type="null"/>
            </ResponseTypes>
          </ResponseCode>
        </ResponseCodes>
      </RequestHandler>
      <RequestHandler Classification="spectrads3" Name="com.spectralogic.s3.server.handler.reqhandler.spectrads3.job.GetJobsRequestHandler">
        <Request Action="LIST" HttpVerb="GET" IncludeIdInPath="false" Resource="JOB" ResourceType="NON_SINGLETON" BucketRequirement="NOT_ALLOWED" ObjectRequirement="NOT_ALLOWED">
          <OptionalQueryParams>
            <Param Name="FullDetails" Type="void"/>
          </OptionalQueryParams>
        </Request>
        <ResponseCodes>
          <ResponseCode>
            <Code>200</Code>
            <ResponseTypes>
              <ResponseType Type="array" ComponentType="com.spectralogic.s3.server.domain.Job"/>
            </ResponseTypes>
          </ResponseCode>
        </ResponseCodes>
      </RequestHandler>
      <RequestHandler Classification="spectrads3" Name="com.spectralogic.s3.server.handler.reqhandler.spectrads3.job.GetJobRequestHandler">
        <Request Action="SHOW" HttpVerb="GET" IncludeIdInPath="true" Resource="JOB" ResourceType="NON_SINGLETON" BucketRequirement="NOT_ALLOWED" ObjectRequirement="NOT_ALLOWED"/>
        <ResponseCodes>
          <ResponseCode>
            <Code>200</Code>
            <ResponseTypes>
              <ResponseType Type="com.spectralogic.s3.server.domain.Job"/>
            </ResponseTypes>
          </ResponseCode>
        </ResponseCodes>
      </RequestHandler>
      <RequestHandler Classification="spectrainternal" Name="com.spectralogic.s3.server.handler.reqhandler.spectrainternal.CreateFakeTapeEnvironmentRequestHandler">
        <Request Action="CREATE" HttpVerb="POST" IncludeIdInPath="false" Resource="TAPE_ENVIRONMENT" BucketRequirement="NOT_ALLOWED" ObjectRequirement="NOT_ALLOWED"/>
      </RequestHandler>
    </RequestHandlers>
    <Types>
      <Type Name="com.spectralogic.s3.server.domain.BucketObjectsApiBean" NameToMarshal="ListBucketResult">
        <Elements>
          <Element Name="Name" Type="java.lang.String"/>
          <Element Name="Objects" Type="array" ComponentType="com.spectralogic.s3.server.domain.Contents">
            <ElementAnnotations>
              <Annotation Name="com.spectralogic.util.marshal.CustomMarshaledName">
                <AnnotationElements>
                  <AnnotationElement Name="CollectionValue" Value="Contents" ValueType="java.lang.String"/>
                  <AnnotationElement Name="CollectionValueRenderingMode" Value="BLOCK_FOR_EVERY_ELEMENT" ValueType="com.spectralogic.util.marshal.CustomMarshaledName$CollectionNameRenderingMode"/>
                </AnnotationElements>
              </Annotation>
            </ElementAnnotations>
          </Element>
        </Elements>
      </Type>
      <Type Name="com.spectralogic.s3.server.domain.Contents">
        <Elements>
          <Element Name="Key" Type="java.lang.String"/>
          <Element Name="Size" Type="long"/>
        </Elements>
      </Type>
      <Type Name="com.spectralogic.s3.server.domain.HttpErrorResultApiBean" NameToMarshal="Error">
        <Elements>
          <Element Name="Code" Type="java.lang.String"/>
        </Elements>
      </Type>
      <Type Name="com.spectralogic.s3.server.domain.Job" NameToMarshal="Job">
        <Elements>
          <Element Name="JobId" Type="java.util.UUID"/>
          <Element Name="Status" Type="com.spectralogic.s3.server.domain.JobStatus"/>
          <Element Name="CompletedSizeInBytes" Type="long" Nullable="true"/>
        </Elements>
      </Type>
      <Type Name="com.spectralogic.s3.server.domain.JobStatus">
        <EnumConstants>
          <EnumConstant Name="IN_PROGRESS"/>
          <EnumConstant Name="COMPLETED"/>
          <EnumConstant Name="CANCELED"/>
        </EnumConstants>
      </Type>
      <Type Name="com.spectralogic.s3.server.domain.Orphan">
        <Elements>
          <Element Name="Value" Type="java.lang.String"/>
        </Elements>
      </Type>
    </Types>
  </Contract>
</Data>
`

const sampleYAML = `
requests:
  - name: GetBucketRequestHandler
    classification: amazons3
    httpVerb: GET
    action: LIST
    path: /{bucketName}
    requiredParams:
      - {name: bucketName, type: string}
    optionalParams:
      - {name: maxKeys, type: int}
    response: {type: ListBucketResult, cardinality: one}
    description: ignored
  - name: GetJobsRequestHandler
    classification: spectrads3
    httpVerb: get
    path: /_rest_/job
    response: {type: "array<Job>", codes: [200]}
  - name: HeadBucketRequestHandler
    httpVerb: HEAD
    path: /{bucketName}
    requiredParams:
      - {name: bucketName, type: string, in: path}
types:
  - name: com.spectralogic.s3.server.domain.ListBucketResult
    fields:
      - {name: Name, type: string}
      - {name: Objects, type: "Contents[]", nameToMarshal: Contents}
  - name: Contents
    fields:
      - {name: Key, type: string}
  - name: Job
    fields:
      - {name: JobId, type: uuid}
  - name: JobStatus
    enumValues: [IN_PROGRESS, COMPLETED]
typeMaps:
  - {contractType: ChecksumType, sdkType: ChecksumType.Type, targetLanguage: java}
`

const sampleOpenAPI = `openapi: 3.0.0
info:
  title: Pets
  version: "1.0.0"
paths:
  /pets:
    get:
      operationId: listPets
      parameters:
        - name: limit
          in: query
          schema: {type: integer, format: int32}
      responses:
        "200":
          description: ok
          content:
            application/json:
              schema:
                type: array
                items:
                  $ref: "#/components/schemas/Pet"
  /pets/{petId}:
    get:
      parameters:
        - name: petId
          in: path
          required: true
          schema: {type: string, format: uuid}
      responses:
        "200":
          description: ok
          content:
            application/json:
              schema:
                $ref: "#/components/schemas/Pet"
    delete:
      operationId: deletePet
      parameters:
        - name: petId
          in: path
          required: true
          schema: {type: string}
      responses:
        "204":
          description: gone
components:
  schemas:
    Pet:
      type: object
      required: [id]
      properties:
        id: {type: integer, format: int64}
        name: {type: string}
        status:
          $ref: "#/components/schemas/PetStatus"
    PetStatus:
      type: string
      enum: [available, sold]
`
